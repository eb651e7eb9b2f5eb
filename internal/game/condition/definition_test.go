package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
)

func TestRegistry_GetAndAll(t *testing.T) {
	reg := condition.NewRegistry()
	reg.Register(&condition.ConditionDef{ID: "b", Name: "B", DurationType: condition.DurationRounds})
	reg.Register(&condition.ConditionDef{ID: "a", Name: "A", DurationType: condition.DurationPermanent})

	got, ok := reg.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
	_, ok = reg.Get("nonexistent")
	assert.False(t, ok)

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	all[0] = nil
	assert.NotNil(t, reg.All()[0], "mutating the snapshot leaves the registry intact")
}

func TestConditionDef_Validate(t *testing.T) {
	assert.Error(t, (&condition.ConditionDef{}).Validate())
	assert.Error(t, (&condition.ConditionDef{ID: "x", Name: "X", DurationType: "until_save"}).Validate())
	assert.NoError(t, (&condition.ConditionDef{ID: "x", Name: "X", DurationType: "rounds"}).Validate())
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	content := `
id: stunned
name: Stunned
description: "You are stunned."
duration_type: rounds
max_stacks: 0
modifiers:
  dodge: -10
restrict_actions:
  - attack
  - ability
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stunned.yaml"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip"), 0o644))

	reg, err := condition.LoadDirectory(dir)
	require.NoError(t, err)
	def, ok := reg.Get("stunned")
	require.True(t, ok)
	assert.Equal(t, -10.0, def.Modifiers["dodge"])
	assert.Equal(t, []string{"attack", "ability"}, def.RestrictActions)
}

func TestLoadDirectory_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	content := "id: x\nname: X\nduration_type: rounds\nlua_on_tick: boom\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte(content), 0o644))
	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := condition.LoadDirectory(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
