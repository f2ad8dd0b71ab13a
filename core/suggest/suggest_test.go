package suggest

import (
	"testing"

	"github.com/gosh-shell/gosh/core/alias"
	"github.com/stretchr/testify/assert"
)

func TestCommands_RanksByDistance(t *testing.T) {
	aliases := alias.NewRegistry()
	aliases.Define("grep", "grep", "--color=auto")
	aliases.Define("gre", "grep")
	aliases.Define("unrelated", "ls")

	got := Commands("grp", 5, nil, aliases)
	assert.Equal(t, []string{"gre", "grep"}, got)
}

func TestCommands_ExcludesSelfAndDistant(t *testing.T) {
	aliases := alias.NewRegistry()
	aliases.Define("ls", "ls")
	aliases.Define("completely-different", "x")

	got := Commands("ls", 5, nil, aliases)
	assert.Empty(t, got)
}

func TestCommands_Limit(t *testing.T) {
	aliases := alias.NewRegistry()
	for _, name := range []string{"cat1", "cat2", "cat3", "cat4"} {
		aliases.Define(name, "cat")
	}

	got := Commands("cat", 2, nil, aliases)
	assert.Len(t, got, 2)
}

func TestCommands_NilSources(t *testing.T) {
	assert.Empty(t, Commands("anything", 5, nil, nil))
}
