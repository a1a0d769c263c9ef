package moderation

import (
	errs "chatroom/errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)

	// Given two dictionaries sharing a word, a comment and a non .txt file
	fsys := fstest.MapFS{
		"censored/en.txt":    {Data: []byte("badger\r\nsnake\n\n# comment\n")},
		"censored/fr.txt":    {Data: []byte("  blaireau \nbadger\n")},
		"censored/README.md": {Data: []byte("ignored")},
		"censored/sub/x.txt": {Data: []byte("nested")},
	}

	// When loading the folder
	data, err := NewCensoredLoader(fsys).LoadAll("censored")

	// Then words are unique, trimmed and sorted
	req.NoError(err)
	req.Equal([]string{"badger", "blaireau", "snake"}, data.Words)
	req.Equal([]string{"en", "fr"}, data.Languages)
}

func TestCensoredLoader_Empty(t *testing.T) {
	req := require.New(t)

	// Given only blank dictionaries
	fsys := fstest.MapFS{
		"censored/en.txt": {Data: []byte("\n \n")},
	}

	// When loading the folder
	_, err := NewCensoredLoader(fsys).LoadAll("censored")

	// Then ErrEmptyWords is returned
	req.ErrorIs(err, errs.ErrEmptyWords)
}

func TestCensoredLoader_MissingDir(t *testing.T) {
	req := require.New(t)

	_, err := NewCensoredLoader(fstest.MapFS{}).LoadAll("nowhere")
	req.Error(err)
}
