package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sehyunpark/moneybook/internal/cli"
	"github.com/sehyunpark/moneybook/internal/common"
	"github.com/sehyunpark/moneybook/internal/csvio"
	"github.com/sehyunpark/moneybook/internal/model"
	"github.com/sehyunpark/moneybook/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the category taxonomy",
		Long:  `List, add, update, delete and import/export the section/category/subcategory taxonomy (관/항/목).`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(importCategoriesCmd())
	cmd.AddCommand(exportCategoriesCmd())
	cmd.AddCommand(resetCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var asTree bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories in display order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return common.NewUserError("Failed to load categories", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'moneybook categories add' to create one."))
				return nil
			}

			if asTree {
				printCategoryTree(categories)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("#"),
				cli.BoldStyle.Render("유형"),
				cli.BoldStyle.Render("관"),
				cli.BoldStyle.Render("항"),
				cli.BoldStyle.Render("목"),
				cli.BoldStyle.Render("ID"))
			for _, cat := range categories {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					cat.Order, cat.Type.Localized(), cat.Section, cat.Category, cat.Subcategory,
					cli.SubtleStyle.Render(cat.ID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTree, "tree", false, "group output as section → category → subcategories")
	return cmd
}

// printCategoryTree groups categories into the section → category →
// subcategory hierarchy, preserving display order within each level.
func printCategoryTree(categories []model.Category) {
	type node struct {
		name     string
		children []string
	}
	var sections []string
	tree := make(map[string][]*node)

	for _, cat := range categories {
		nodes, ok := tree[cat.Section]
		if !ok {
			sections = append(sections, cat.Section)
		}
		var current *node
		for _, n := range nodes {
			if n.name == cat.Category {
				current = n
				break
			}
		}
		if current == nil {
			current = &node{name: cat.Category}
			nodes = append(nodes, current)
		}
		if cat.Subcategory != "" {
			current.children = append(current.children, cat.Subcategory)
		}
		tree[cat.Section] = nodes
	}

	for _, section := range sections {
		fmt.Println(cli.TitleStyle.Render(section))
		for _, cat := range tree[section] {
			fmt.Printf("  %s\n", cat.name)
			for _, sub := range cat.children {
				fmt.Printf("    %s\n", cli.SubtleStyle.Render(sub))
			}
		}
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		typeFlag    string
		section     string
		category    string
		subcategory string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new category",
		Long:  `Create a new taxonomy node. The duplicate check happens here, before the store is touched; the store itself accepts whatever it is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			catType, err := model.ParseCategoryType(typeFlag)
			if err != nil {
				return err
			}
			candidate := model.Category{
				Type:        catType,
				Section:     section,
				Category:    category,
				Subcategory: subcategory,
			}

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			// Duplicate prevention is this layer's responsibility.
			existing, err := store.GetCategories(ctx)
			if err != nil {
				return common.NewUserError("Failed to check existing categories", err)
			}
			for _, cat := range existing {
				if cat.Same(candidate) {
					return fmt.Errorf("category %s/%s/%s already exists",
						strings.TrimSpace(section), strings.TrimSpace(category), strings.TrimSpace(subcategory))
				}
			}

			created, err := store.AddCategory(ctx, candidate)
			if err != nil {
				return common.NewUserError("Failed to add category", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added category %s/%s/%s (order %d)",
				created.Section, created.Category, created.Subcategory, created.Order)))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "income or expense (수입/지출)")
	cmd.Flags().StringVar(&section, "section", "", "section label (관)")
	cmd.Flags().StringVar(&category, "category", "", "category label (항)")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "subcategory label (목), optional")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		typeFlag    string
		section     string
		category    string
		subcategory string
		order       int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category by id",
		Long:  `Replace fields of an existing taxonomy node. Unset flags keep their current values; --order reassigns the display position.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			current, err := findCategory(ctx, store, id)
			if err != nil {
				return err
			}

			updated := *current
			if cmd.Flags().Changed("type") {
				catType, err := model.ParseCategoryType(typeFlag)
				if err != nil {
					return err
				}
				updated.Type = catType
			}
			if cmd.Flags().Changed("section") {
				updated.Section = section
			}
			if cmd.Flags().Changed("category") {
				updated.Category = category
			}
			if cmd.Flags().Changed("subcategory") {
				updated.Subcategory = subcategory
			}
			if cmd.Flags().Changed("order") {
				updated.Order = order
			}

			if err := store.UpdateCategory(ctx, updated); err != nil {
				return common.NewUserError("Failed to update category", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %s", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "income or expense (수입/지출)")
	cmd.Flags().StringVar(&section, "section", "", "section label (관)")
	cmd.Flags().StringVar(&category, "category", "", "category label (항)")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "subcategory label (목)")
	cmd.Flags().IntVar(&order, "order", 0, "display position")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.DeleteCategory(ctx, args[0]); err != nil {
				return common.NewUserError("Failed to delete category", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %s", args[0])))
			return nil
		},
	}
}

func importCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace all categories from a CSV file",
		Long:  `Validate and import a category CSV (headers 유형,관,항,목 or their English names). The import replaces the whole taxonomy: rows are deduplicated, sorted and renumbered. A validation failure rejects the file before anything is written.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Failed to open %s", args[0]), err)
			}
			defer func() { _ = f.Close() }()

			categories, err := csvio.ParseCategories(f)
			if err != nil {
				return err
			}

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.ReplaceAllCategories(ctx, categories); err != nil {
				return common.NewUserError("Failed to import categories", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d categories from %s", len(categories), args[0])))
			return nil
		},
	}
}

func exportCategoriesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all categories to CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return common.NewUserError("Failed to load categories", err)
			}

			if output == "" {
				output = csvio.ExportFilename("categories", time.Now())
			}
			f, err := os.Create(output)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Failed to create %s", output), err)
			}
			defer func() { _ = f.Close() }()

			if err := csvio.WriteCategories(f, categories); err != nil {
				return common.NewUserError("Failed to export categories", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("No categories found; wrote the default template to %s", output)))
				return nil
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d categories to %s", len(categories), output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: date-stamped name)")
	return cmd
}

func resetCategoriesCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the taxonomy with the built-in defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !yes {
				return fmt.Errorf("this replaces every category; re-run with --yes to confirm")
			}

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			defaults := model.DefaultCategories()
			if err := store.ReplaceAllCategories(ctx, defaults); err != nil {
				return common.NewUserError("Failed to reset categories", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Reset taxonomy to %d default categories", len(defaults))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation check")
	return cmd
}

// findCategory locates one category by id via GetCategories; the store has
// no point lookup because the UI always works from the full ordered list.
func findCategory(ctx context.Context, store *storage.Store, id string) (*model.Category, error) {
	categories, err := store.GetCategories(ctx)
	if err != nil {
		return nil, common.NewUserError("Failed to load categories", err)
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, id)
}
