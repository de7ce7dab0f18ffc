package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeCmd_Flags(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.Equal(t, ":8080", serveCmd.Flags().Lookup("addr").DefValue)
	assert.Equal(t, "pages", serveCmd.Flags().Lookup("dir").DefValue)
}

func TestServeCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t, nil)

	_, err := execute(t, "serve", "extra")
	assert.Error(t, err)
}
