package main

import (
	"errors"
	"fmt"

	"blogcms/internal/seed"

	"github.com/spf13/cobra"
)

var (
	seedFile     string
	seedGenerate int
	seedAuthor   string
	seedRandom   int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample accounts and posts",
	Long: `Load sample content.

Without flags the built-in fixture (one admin and three posts) is applied.
--file applies a YAML fixture instead. --generate N additionally writes N
generated posts authored by --author.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture file (default: built-in sample)")
	seedCmd.Flags().IntVarP(&seedGenerate, "generate", "g", 0, "Number of generated posts to add")
	seedCmd.Flags().StringVar(&seedAuthor, "author", "admin", "Username credited for generated posts")
	seedCmd.Flags().Int64Var(&seedRandom, "seed", 1, "Random seed for generated posts")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if seedGenerate < 0 {
		return errors.New("--generate must not be negative")
	}

	fx, err := seed.Load(seedFile)
	if err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	seeder := seed.NewSeeder(rt.admins, rt.posts)
	res, err := seeder.Apply(ctx, fx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Accounts: %d created, %d already present\n", res.AdminsCreated, res.AdminsSkipped)
	if res.PostsSkipped {
		fmt.Fprintln(out, "Posts: skipped, the blog already has content")
	} else {
		fmt.Fprintf(out, "Posts: %d created\n", res.PostsCreated)
	}

	if seedGenerate == 0 {
		return nil
	}

	author, err := rt.admins.GetByUsername(ctx, seedAuthor)
	if err != nil {
		return fmt.Errorf("author %q: %w", seedAuthor, err)
	}
	n, err := seeder.CreateGenerated(ctx, seedGenerate, author.ID, seedRandom)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Generated %d posts by %q\n", n, author.Username)
	return nil
}
