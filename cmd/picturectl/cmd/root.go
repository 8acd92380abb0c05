package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dfryer1193/pictures/picture/application"
	"github.com/dfryer1193/pictures/picture/persistence"
	"github.com/dfryer1193/pictures/shared/config"
	"github.com/dfryer1193/pictures/shared/fs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once the root command has started
type app struct {
	backend  *persistence.Backend
	svc      *application.PictureService
	importer *application.Importer
}

// close releases the backend opened by the root command, if any
func (a *app) close() error {
	if a.backend == nil {
		return nil
	}
	return a.backend.Close()
}

// newRootCommand builds the picturectl command tree. The returned app holds
// the backend opened while the command runs; see execute.
func newRootCommand() (*cobra.Command, *app) {
	a := &app{}
	var cfgFile string

	root := &cobra.Command{
		Use:   "picturectl",
		Short: "Manage picture records",
		Long: `picturectl stores and looks up picture documents and copies their
image files into per-snap directories.

Configuration is read from the environment (PICTURE_SAVE_DIRECTORY,
STORE_BACKEND, DATA_DIR, SQLITE_DB_PATH, LOG_LEVEL) on top of an optional
YAML file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				cfgFile = os.Getenv("PICTURE_CONFIG_FILE")
			}
			cfg, err := config.LoadFile(cfgFile)
			if err != nil {
				return err
			}

			log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
			zerolog.SetGlobalLevel(cfg.Level())

			backend, err := persistence.OpenBackend(cfg.StoreBackend, cfg.DataDir, cfg.SQLitePath)
			if err != nil {
				return err
			}

			a.backend = backend
			a.svc = application.NewPictureService(backend.Store, fs.NewOSFilesystem(), cfg.PictureSaveDirectory)
			a.importer = application.NewImporter(a.svc, backend.RunInTx)
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $PICTURE_CONFIG_FILE)")

	root.AddCommand(
		newImportCommand(a),
		newGetCommand(a),
		newListCommand(a),
		newExistsCommand(a),
		newPathCommand(a),
	)
	return root, a
}

// execute runs root and closes the backend afterwards, also when the command
// failed. PersistentPostRunE is skipped on errors so it cannot do this.
func execute(root *cobra.Command, a *app) (err error) {
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close store: %w", cerr)
		}
	}()
	return root.Execute()
}

// Execute runs the command tree against os.Args
func Execute() error {
	return execute(newRootCommand())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
