package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionReleaseOverride(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.4.2"
	assert.Equal(t, "1.4.2", GetVersion())
}

func TestGetFullVersionIncludesBuildMetadata(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "1.4.2"

	full := GetFullVersion()
	assert.True(t, strings.HasPrefix(full, "1.4.2 (build: "))
	assert.Contains(t, full, "commit:")
}
