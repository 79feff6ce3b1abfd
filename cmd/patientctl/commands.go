package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/itakarlapalli/subcentre/internal/client"
	"github.com/itakarlapalli/subcentre/internal/config"
	"github.com/itakarlapalli/subcentre/internal/contact"
	"github.com/itakarlapalli/subcentre/internal/export"
	"github.com/itakarlapalli/subcentre/internal/patient"
	"github.com/itakarlapalli/subcentre/internal/storage"
	"github.com/itakarlapalli/subcentre/pkg/logger"
)

type app struct {
	cfg     config.ClientConfig
	apiURL  string
	timeout time.Duration

	api  *client.HTTPClient
	sync *client.Synchronizer
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.LoadClientConfig()}

	root := &cobra.Command{
		Use:           "patientctl",
		Short:         "Manage Itakarlapalli sub-centre patient records",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.connect()
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", a.cfg.APIURL, "patient API base URL (PATIENTS_API_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", a.cfg.Timeout, "request timeout, 0 uses the transport default")

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.exportCmd(),
		a.messageCmd(),
		a.healthCmd(),
	)
	return root
}

func (a *app) connect() {
	a.api = client.NewHTTPClient(a.apiURL, &http.Client{Timeout: a.timeout})
	a.sync = client.NewSynchronizer(a.api)
	logger.Debugf("using API at %s", a.apiURL)
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List patients, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sync.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), a.sync.Patients())
		},
	}
}

func printTable(w io.Writer, list []*patient.Patient) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tAGE\tVILLAGE")
	for i, p := range list {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\n", i+1, p.ID, p.Name, p.Age, p.Village)
	}
	return tw.Flush()
}

type draftFlags struct {
	name, age, village string
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "patient name")
	cmd.Flags().StringVar(&f.age, "age", "", "age in years")
	cmd.Flags().StringVar(&f.village, "village", "", "village")
}

func (a *app) addCmd() *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.sync.SubmitCreate(cmd.Context(), client.Draft{Name: f.name, Age: f.age, Village: f.village})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added patient %d (%s)\n", p.ID, p.Name)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "edit <position>",
		Short: "Edit the patient at a list position (as printed by list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("position must be a number: %q", args[0])
			}
			ctx := cmd.Context()
			if err := a.sync.Refresh(ctx); err != nil {
				return err
			}
			if err := a.sync.BeginEdit(pos - 1); err != nil {
				return err
			}
			for field, flag := range map[string]string{client.FieldName: "name", client.FieldAge: "age", client.FieldVillage: "village"} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				v, _ := cmd.Flags().GetString(flag)
				if err := a.sync.SetField(field, v); err != nil {
					return err
				}
			}
			p, err := a.sync.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated patient %d (%s, %d, %s)\n", p.ID, p.Name, p.Age, p.Village)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be a number: %q", args[0])
			}
			if err := a.sync.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted patient %d\n", id)
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format, dir string
	var upload bool
	var linkTTL time.Duration
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the patient list as a spreadsheet or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.sync.Refresh(ctx); err != nil {
				return err
			}
			var arc export.Archiver
			if upload {
				if arc, err = a.archiver(ctx); err != nil {
					return err
				}
			}
			return writeExport(ctx, cmd.OutOrStdout(), filepath.Join(dir, f.FileName()), f, a.sync.Patients(), arc, linkTTL)
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx (excel) or pdf")
	cmd.Flags().StringVar(&dir, "out", ".", "output directory")
	cmd.Flags().BoolVar(&upload, "upload", false, "also archive the file in MinIO (MINIO_* settings)")
	cmd.Flags().DurationVar(&linkTTL, "link-expiry", 24*time.Hour, "lifetime of the printed download link for an uploaded file, 0 prints none")
	return cmd
}

func (a *app) archiver(ctx context.Context) (export.Archiver, error) {
	s, err := storage.NewMinIOStorage(ctx, a.cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("archive storage: %w", err)
	}
	return s, nil
}

// downloadLinker is implemented by archives that can hand out temporary
// download links, such as storage.MinIOStorage.
type downloadLinker interface {
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

var _ downloadLinker = (*storage.MinIOStorage)(nil)

func writeExport(ctx context.Context, out io.Writer, path string, f export.Format, list []*patient.Patient, arc export.Archiver, linkTTL time.Duration) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	res, werr := export.Write(ctx, file, f, list, arc)
	if cerr := file.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return werr
	}
	fmt.Fprintf(out, "wrote %d patients to %s (%d bytes)\n", len(list), path, res.Size)
	if res.ArchiveKey == "" {
		return nil
	}
	fmt.Fprintf(out, "archived as %s\n", res.ArchiveKey)
	if l, ok := arc.(downloadLinker); ok && linkTTL > 0 {
		link, err := l.PresignedURL(ctx, res.ArchiveKey, linkTTL)
		if err != nil {
			logger.Warnf("no download link for %s: %v", res.ArchiveKey, err)
			return nil
		}
		fmt.Fprintf(out, "download link (valid %s): %s\n", linkTTL, link)
	}
	return nil
}

func (a *app) messageCmd() *cobra.Command {
	var m contact.Message
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send a message to the sub-centre operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := m.Normalize(); err != nil {
				return err
			}
			if err := a.api.SendMessage(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Message sent successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&m.Name, "name", "", "your name")
	cmd.Flags().StringVar(&m.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&m.Email, "email", "", "email address (optional)")
	cmd.Flags().StringVar(&m.Message, "message", "", "message text")
	return cmd
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
