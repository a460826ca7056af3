package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/imaging"
	"github.com/spf13/cobra"
)

// sameReferenceBits is the hamming distance under which two reference
// images count as the same picture.
const sameReferenceBits = 10

var caseAddCmd = &cobra.Command{
	Use:   "add <full name>",
	Short: "Add a person case with a reference photo",
	Long: `Add a person case: the full name to search for plus the reference photo
every candidate face will be compared against.

The photo is converted to JPEG and stored under the data directory, and the
case slug is derived from the name:

  profile-matcher case add "Jana Novakova" --photo ./jana.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runCaseAdd,
}

func init() {
	caseCmd.AddCommand(caseAddCmd)

	caseAddCmd.Flags().String("photo", "", "Reference photo path (required)")
	_ = caseAddCmd.MarkFlagRequired("photo")
}

func runCaseAdd(cmd *cobra.Command, args []string) error {
	fullName := args[0]
	photoPath := mustGetString(cmd, "photo")

	slug := casestore.Slugify(fullName)
	if slug == "" {
		return fmt.Errorf("name %q has no letters or digits to build a slug from", fullName)
	}

	data, err := os.ReadFile(photoPath)
	if err != nil {
		return fmt.Errorf("could not read photo: %w", err)
	}
	jpegData, err := imaging.EnsureJPEG(data)
	if err != nil {
		return fmt.Errorf("could not convert photo to JPEG: %w", err)
	}

	cfg := config.Load()
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// Check before touching the filesystem so an existing case never has
	// its reference image replaced by mistake.
	if _, err := st.GetCase(ctx, slug); err == nil {
		return fmt.Errorf("case %s already exists", slug)
	}

	warnDuplicateReference(ctx, st, cfg.Store.DataDir, jpegData)

	rel := path.Join("references", slug+".jpg")
	abs := filepath.Join(cfg.Store.DataDir, "references", slug+".jpg")
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("could not create references dir: %w", err)
	}
	if err := os.WriteFile(abs, jpegData, 0o644); err != nil {
		return fmt.Errorf("could not write reference image: %w", err)
	}

	err = st.CreateCase(ctx, casestore.PersonCase{
		Slug:           slug,
		FullName:       fullName,
		ReferenceImage: rel,
		CreatedAt:      time.Now().UTC(),
	})
	if errors.Is(err, casestore.ErrCaseExists) {
		return fmt.Errorf("case %s already exists", slug)
	}
	if err != nil {
		return fmt.Errorf("could not create case: %w", err)
	}

	fmt.Printf("Added case %s for %s\n", slug, fullName)
	return nil
}

// warnDuplicateReference compares the new reference against the stored case
// references and warns when two look like the same picture.
func warnDuplicateReference(ctx context.Context, st casestore.Store, dataDir string, fresh []byte) {
	freshHash, err := imaging.DHash(fresh)
	if err != nil {
		return
	}
	cases, err := st.ListCases(ctx)
	if err != nil {
		return
	}

	for _, person := range cases {
		stored, err := os.ReadFile(filepath.Join(dataDir, filepath.FromSlash(person.ReferenceImage)))
		if err != nil {
			continue
		}
		storedHash, err := imaging.DHash(stored)
		if err != nil {
			continue
		}
		if imaging.SameImage(freshHash, storedHash, sameReferenceBits) {
			fmt.Printf("Warning: reference photo looks identical to case %s (%s)\n", person.Slug, person.FullName)
		}
	}
}
