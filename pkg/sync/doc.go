/*
The sync package implements the mdexport synchronization engine. Each
configured mapping is processed in two strictly separated phases:

1) Cleanup -- the expected output tree is computed from the input tree, and
   anything under the output root that isn't expected is stale. Each stale
   item is resolved interactively (delete, keep, or a sticky decision that
   applies to everything remaining).
2) Processing -- the input tree is walked again, directories are mirrored,
   Markdown files are converted to PDF by the external converter, and every
   other file is copied with its metadata preserved.

Staleness is purely presence-based: no timestamps or content hashes are
compared. Anything not derivable from the current input tree is stale, and
anything derivable is assumed up to date.

Stale directories are deleted recursively as whole subtrees. If a directory
in the source was renamed (or re-cased), the old output directory becomes
stale and its entire contents are deleted on confirmation -- including files
that a fresh conversion pass would immediately recreate, and any files the
user placed there by hand. There is no content-based safety net; decline the
prompt to keep a tree.
*/
package sync
