package main

import (
	"chatroom/internal"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestBuildCensor_Disabled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given no word configured
	censor, err := buildCensor(internal.Config{CharReplacement: "*"}, log)

	// Then moderation is off
	req.NoError(err)
	req.Nil(censor)
}

func TestBuildCensor_WordsAndDir(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given words from the environment and from a word list
	dir := t.TempDir()
	req.NoError(os.WriteFile(filepath.Join(dir, "en.txt"), []byte("snake\n"), 0o600))
	config := internal.Config{CensoredWords: "badger", CensoredDir: dir, CharReplacement: "#"}

	// When building the censor
	censor, err := buildCensor(config, log)
	req.NoError(err)
	req.NotNil(censor)

	// Then both sources are masked
	masked, words := censor.Censor("badger and snake")
	req.Equal("###### and #####", masked)
	req.Equal([]string{"badger", "snake"}, words)
}

func TestBuildCensor_MissingDir(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	config := internal.Config{CensoredDir: filepath.Join(t.TempDir(), "missing"), CharReplacement: "*"}
	_, err := buildCensor(config, log)

	req.Error(err)
}
