package commands

import (
	"fmt"

	"github.com/aquamind/growthengine/internal/config"
	"github.com/spf13/cobra"
)

// loadModelsCmd imports a YAML model pack (temperature profiles, TGC/FCR/
// mortality models) into the database, for seeding or updating a
// deployment's model library without hand-writing SQL. Temperature profiles
// are stored together with the TGC models that reference them; a profile no
// TGC model references is not stored.
var loadModelsCmd = &cobra.Command{
	Use:   "load-models <path>",
	Short: "Import a YAML model pack of TGC/FCR/mortality models and temperature profiles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()
		ctx := cmd.Context()

		pack, err := config.LoadModelPack(args[0])
		if err != nil {
			return err
		}

		profilesByID := make(map[string]struct{}, len(pack.TemperatureProfiles))
		profileByID := func(id string) (int, bool) {
			for i, p := range pack.TemperatureProfiles {
				if p.ID == id {
					return i, true
				}
			}
			return 0, false
		}

		for _, tgcModel := range pack.TGCModels {
			i, ok := profileByID(tgcModel.ProfileID)
			if !ok {
				return fmt.Errorf("tgc model %s references unknown temperature profile %s", tgcModel.ID, tgcModel.ProfileID)
			}
			if err := repo.SaveTGCModel(ctx, tgcModel, pack.TemperatureProfiles[i]); err != nil {
				return fmt.Errorf("tgc model %s: %w", tgcModel.ID, err)
			}
			profilesByID[tgcModel.ProfileID] = struct{}{}
		}
		for _, m := range pack.FCRModels {
			if err := repo.SaveFCRModel(ctx, m); err != nil {
				return fmt.Errorf("fcr model %s: %w", m.ID, err)
			}
		}
		for _, m := range pack.MortalityModels {
			if err := repo.SaveMortalityModel(ctx, m); err != nil {
				return fmt.Errorf("mortality model %s: %w", m.ID, err)
			}
		}

		fmt.Printf("loaded %d temperature profile(s), %d tgc model(s), %d fcr model(s), %d mortality model(s)\n",
			len(profilesByID), len(pack.TGCModels), len(pack.FCRModels), len(pack.MortalityModels))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadModelsCmd)
}
