package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/nosecatch/internal/skin"
)

func TestOpen_MissingFileIsFresh(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "profile.yaml"))
	require.NoError(t, err)

	p := s.Get()
	assert.Zero(t, p.Coins)
	assert.Equal(t, []string{"default"}, p.Inventory)
	assert.Equal(t, "default", p.Equipped)
	assert.False(t, p.TutorialSeen)
}

func TestStore_RoundTripThroughDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile.yaml")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.AddCoins(120))
	require.NoError(t, s.AddCoins(0))
	require.NoError(t, s.Update(func(p *Profile) {
		p.TutorialSeen = true
		p.LastUsername = "ada"
		p.Inventory = append(p.Inventory, "clown")
		p.Equipped = "clown"
	}))

	again, err := Open(path)
	require.NoError(t, err)
	p := again.Get()
	assert.Equal(t, 120, p.Coins)
	assert.True(t, p.TutorialSeen)
	assert.Equal(t, "ada", p.LastUsername)
	assert.Equal(t, "clown", again.Wardrobe(skin.DefaultRegistry()).Equipped().ID)
}

func TestOpen_RepairsInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("coins: -5\ninventory: [gold]\n"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	p := s.Get()
	assert.Equal(t, []string{"default", "gold"}, p.Inventory)
	assert.Equal(t, "default", p.Equipped)
	assert.Zero(t, p.Coins)
}

func TestOpen_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("coins: [oops"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "p.yaml"))
	require.NoError(t, err)
	p := s.Get()
	p.Inventory[0] = "mutated"
	assert.Equal(t, "default", s.Get().Inventory[0])
}
