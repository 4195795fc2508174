package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehyunpark/moneybook/internal/common"
)

func TestCategoriesCmd(t *testing.T) {
	cmd := categoriesCmd()
	assert.NotNil(t, cmd)

	want := []string{"list", "add", "update", "delete", "import", "export", "reset"}
	for _, name := range want {
		var found *cobra.Command
		for _, subcmd := range cmd.Commands() {
			if subcmd.Name() == name {
				found = subcmd
				break
			}
		}
		assert.NotNil(t, found, "%s subcommand should exist", name)
	}
}

func TestAddCategoryCmd_Flags(t *testing.T) {
	cmd := addCategoryCmd()

	for _, name := range []string{"type", "section", "category", "subcategory"} {
		assert.NotNil(t, cmd.Flag(name), "%s flag should exist", name)
	}

	// Subcategory is the only optional label.
	assert.Contains(t, cmd.Flag("subcategory").Usage, "optional")
}

func TestListCategoriesCmd_TreeFlag(t *testing.T) {
	cmd := listCategoriesCmd()

	flag := cmd.Flag("tree")
	assert.NotNil(t, flag, "tree flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestImportCategoriesCmd_SurfacesUserError(t *testing.T) {
	cmd := importCategoriesCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.csv")})

	err := cmd.Execute()
	require.Error(t, err)

	var userErr *common.UserError
	require.True(t, errors.As(err, &userErr), "command failures should carry a user-facing message")
	assert.Contains(t, userErr.UserMessage, "Failed to open")
}

func TestResetCategoriesCmd_RequiresConfirmation(t *testing.T) {
	cmd := resetCategoriesCmd()
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	assert.Error(t, err, "reset without --yes should refuse to run")
	assert.Contains(t, err.Error(), "--yes")
}
