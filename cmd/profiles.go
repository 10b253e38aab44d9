package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smazurov/rgbnode/internal/device"
	"github.com/smazurov/rgbnode/internal/profile"
	"github.com/smazurov/rgbnode/internal/store"
)

// DefaultStorageDir is where the daemon keeps its records unless
// configured otherwise.
const DefaultStorageDir = "data"

// profileFile is the text form of both records.
type profileFile struct {
	Config   profile.Config    `json:"config" yaml:"config" toml:"config"`
	Profiles []profile.Profile `json:"profiles" yaml:"profiles" toml:"profiles"`
}

// CreateProfilesCmd creates the profiles command.
func CreateProfilesCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Export, import or reset the stored profiles",
		Long: `Operates on the record files in the storage directory. ` +
			`Stop the daemon before import or reset, or it will overwrite the files with its own state.`,
	}
	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", DefaultStorageDir, "Storage directory holding "+device.ProfilesFile+" and "+device.ConfigFile)

	cmd.AddCommand(
		createExportCmd(&dir),
		createImportCmd(&dir),
		createResetCmd(&dir),
	)
	return cmd
}

func createExportCmd(dir *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the configuration and profile table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, table, err := readRecords(*dir)
			if err != nil {
				return err
			}
			return encodeProfiles(cmd.OutOrStdout(), format, profileFile{
				Config:   cfg,
				Profiles: table[:],
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml, toml)")
	return cmd
}

func createImportCmd(dir *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the stored records with the contents of a file",
		Long:  `Reads a file written by export. The format follows the file extension unless --format is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(args[0]), ".")
			}

			var in profileFile
			if err := decodeProfiles(data, format, &in); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			cfg, table, err := in.validate()
			if err != nil {
				return err
			}

			if err := writeRecords(*dir, cfg, table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d profiles into %s\n", len(table), *dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format (json, yaml, toml)")
	return cmd
}

func createResetCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Write the default configuration and profile table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := writeRecords(*dir, profile.DefaultConfig(), profile.DefaultTable()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s and %s in %s\n", device.ProfilesFile, device.ConfigFile, *dir)
			return nil
		},
	}
}

// readRecords loads both records. A missing file yields its defaults; a
// corrupt one is an error.
func readRecords(dir string) (profile.Config, profile.Table, error) {
	cfg := profile.DefaultConfig()
	table := profile.DefaultTable()

	for _, rec := range []*store.Record{
		store.New(filepath.Join(dir, device.ConfigFile), &cfg),
		store.New(filepath.Join(dir, device.ProfilesFile), &table),
	} {
		if err := rec.Read(); err != nil && !errors.Is(err, store.ErrNotFound) {
			return cfg, table, err
		}
	}
	return cfg, table, nil
}

func writeRecords(dir string, cfg profile.Config, table profile.Table) error {
	if err := store.New(filepath.Join(dir, device.ProfilesFile), &table).UpdateNow(); err != nil {
		return err
	}
	return store.New(filepath.Join(dir, device.ConfigFile), &cfg).UpdateNow()
}

func (f profileFile) validate() (profile.Config, profile.Table, error) {
	var table profile.Table
	if len(f.Profiles) != profile.Count {
		return f.Config, table, fmt.Errorf("want %d profiles, got %d", profile.Count, len(f.Profiles))
	}
	if f.Config.Profile >= profile.Count {
		return f.Config, table, fmt.Errorf("config: %w: %d", profile.ErrRange, f.Config.Profile)
	}
	for i, p := range f.Profiles {
		if p.Speed < profile.MinSpeed {
			return f.Config, table, fmt.Errorf("profile %d: speed must be at least %d ms", i, profile.MinSpeed)
		}
		table[i] = p
	}
	return f.Config, table, nil
}

func encodeProfiles(w io.Writer, format string, v profileFile) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func decodeProfiles(data []byte, format string, v *profileFile) error {
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(v)
	case "toml":
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
