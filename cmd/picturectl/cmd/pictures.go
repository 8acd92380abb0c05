package cmd

import (
	"fmt"

	"github.com/dfryer1193/pictures/api"
	"github.com/dfryer1193/pictures/picture/domain"
	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var snapID string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Copy JPEG files into the picture directory and record them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved := make([]api.SavedPicture, 0, len(args))
			for _, path := range args {
				doc, err := a.importer.Import(cmd.Context(), path, snapID)
				if err != nil {
					return err
				}
				saved = append(saved, api.SavedPicture{ID: doc.ID, Revision: doc.Revision})
			}
			return printJSON(cmd.OutOrStdout(), saved)
		},
	}
	cmd.Flags().StringVarP(&snapID, "snap", "s", "", "snap the pictures belong to")
	return cmd
}

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print the document stored under an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.svc.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var snapID string
	var fields map[string]string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the pictures matching every given field",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.Filter{}
			for k, v := range fields {
				filter[k] = v
			}
			if snapID != "" {
				filter[domain.FieldSnapID] = snapID
			}

			pictures, err := a.svc.FindMany(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pictures)
		},
	}
	cmd.Flags().StringVarP(&snapID, "snap", "s", "", "only pictures of this snap")
	cmd.Flags().StringToStringVarP(&fields, "field", "f", nil, "field=value constraint, repeatable")
	return cmd
}

func newExistsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <id>",
		Short: "Print whether a document is stored under an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, err := a.svc.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), exists)
			return err
		},
	}
}

func newPathCommand(a *app) *cobra.Command {
	var snapID string
	var create bool

	cmd := &cobra.Command{
		Use:   "path <id>",
		Short: "Print where the image file of a picture lives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName := a.svc.BuildFileName(args[0])
			path, err := a.svc.BuildFilePath(fileName, snapID, create)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), api.PicturePath{FileName: fileName, Path: path})
		},
	}
	cmd.Flags().StringVarP(&snapID, "snap", "s", "", "snap the picture belongs to")
	cmd.Flags().BoolVar(&create, "create", false, "create the snap directory")
	return cmd
}
