package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPrintableMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exp  string
	}{
		{
			name: "Plain",
			err:  New("boom"),
			exp:  "boom",
		},
		{
			name: "Context",
			err:  WithContext(New("boom"), "do thing"),
			exp:  "do thing: boom",
		},
		{
			name: "Friendly",
			err:  NewFriendlyError("install %s first", "pandoc"),
			exp:  "install pandoc first",
		},
		{
			name: "FriendlyUnderContext",
			err: WithContext(
				WithContext(NewFriendlyError("install pandoc first"), "check converter"),
				"run sync"),
			exp: "install pandoc first",
		},
		{
			name: "FileNotFound",
			err:  WithContext(FileNotFound{Path: "/tmp/config.yaml"}, "read config"),
			exp:  `read config: "/tmp/config.yaml" does not exist`,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, GetPrintableMessage(test.err))
		})
	}
}
