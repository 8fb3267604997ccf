package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/router"
)

func newStatusCmd(load loaderFunc) *cobra.Command {
	var (
		petID  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Muestra el estado de cuidados de hoy de una mascota",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, err := load()
			if err != nil {
				return err
			}

			store, closeStore, err := router.OpenStore(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer closeStore()

			pet, err := pets.NewService(store.Pets()).GetByID(ctx, petID)
			if err != nil {
				return fmt.Errorf("pet %q: %w", petID, err)
			}

			loc, _ := cfg.Location()
			careSvc := care.NewService(store, care.Options{
				Location: loc,
				Lookback: cfg.Lookback(),
				Logger:   log,
			})

			st, err := careSvc.Status(ctx, pet.ID, pet.CareConfig())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStatus(out, pet, st)
			return nil
		},
	}

	cmd.Flags().StringVar(&petID, "pet", "", "ID de la mascota")
	cmd.Flags().BoolVar(&asJSON, "json", false, "salida JSON")
	_ = cmd.MarkFlagRequired("pet")

	return cmd
}

func printStatus(w io.Writer, pet pets.Pet, st care.PetStatus) {
	fmt.Fprintf(w, "%s (%s) at %s\n", pet.Name, pet.Species, st.Now.Format(time.RFC1123))

	for _, t := range care.AllCareTypes {
		marks := []string{}
		if st.Needs.Get(t) {
			marks = append(marks, "needed")
		}
		if st.Allowed.Get(t) {
			marks = append(marks, "allowed")
		} else if at, ok := st.NextAllowedAt[t]; ok {
			marks = append(marks, "next "+humanize.RelTime(at, st.Now, "ago", "from now"))
		}
		fmt.Fprintf(w, "  %-8s %2d  %s\n", t, st.Counts.Get(t), strings.Join(marks, ", "))
	}

	if st.Urgent != "" {
		fmt.Fprintf(w, "urgent: %s\n", st.Urgent)
	}
	if st.Mood != nil {
		fmt.Fprintf(w, "mood: %.1f\n", st.Mood.Score)
	}
}
