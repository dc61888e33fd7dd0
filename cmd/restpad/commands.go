package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/restpad/internal/app"
	"github.com/unkn0wn-root/restpad/internal/curl"
	"github.com/unkn0wn-root/restpad/internal/errdef"
	"github.com/unkn0wn-root/restpad/internal/render"
)

func newSendCmd(opts *options) *cobra.Command {
	var (
		id      string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the active request and print the raw response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctrl, err := rt.controller(cmd.Context())
			if err != nil {
				return err
			}
			if id != "" {
				if _, ok := ctrl.Store().Find(id); !ok {
					return errdef.New(errdef.CodeStorage, "no request with id %q", id)
				}
				ctrl.Handle(app.Switch{ID: id})
			}

			out, ok := ctrl.SendNow(cmd.Context())
			if !ok {
				return errdef.New(errdef.CodeHTTP, "request has no url")
			}

			w := cmd.OutOrStdout()
			if verbose {
				req := out.Request
				fmt.Fprintln(w, render.RequestText(req.Method, req.URL, req.Headers, req.Body))
				fmt.Fprintln(w)
			}
			if out.Failed() {
				fmt.Fprintln(w, render.ErrorText(out.Err))
				return out.Err
			}
			fmt.Fprintln(w, render.ResponseText(out.Response))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s in %dms\n", out.Status(), out.ElapsedMillis())
			if timing := out.Response.Timeline.Summary(); timing != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), timing)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Request id to send instead of the active one")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the outgoing request too")
	return cmd
}

func newImportCurlCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import-curl [command]",
		Short: "Create a request from a curl command (argument or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := curlInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if _, err := curl.Parse(text); err != nil {
				return err
			}

			rt, err := openRuntime(cmd, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctrl, err := rt.controller(cmd.Context())
			if err != nil {
				return err
			}
			ctrl.Handle(app.Create{})
			ctrl.Handle(app.ImportCurl{Text: text})

			e, ok := ctrl.Active()
			if !ok {
				return errdef.New(errdef.CodeStorage, "imported request not found")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s %s as %s\n", e.Method, e.DisplayName(), e.ID)
			return nil
		},
	}
}

func curlInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errdef.Wrap(errdef.CodeFilesystem, err, "read stdin")
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errdef.New(errdef.CodeParse, "no curl command given")
	}
	return text, nil
}

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.yaml>",
		Short: "Write the request collection to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctrl, err := rt.controller(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return errdef.Wrap(errdef.CodeFilesystem, err, "create %q", args[0])
			}
			if err := ctrl.Store().Export(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errdef.Wrap(errdef.CodeFilesystem, err, "close %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d requests to %s\n", ctrl.Store().Len(), args[0])
			return nil
		},
	}
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Append requests from a YAML export to the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctrl, err := rt.controller(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errdef.Wrap(errdef.CodeFilesystem, err, "open %q", args[0])
			}
			defer f.Close()

			n, err := ctrl.Store().Import(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d requests from %s\n", n, args[0])
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the request collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctrl, err := rt.controller(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tMETHOD\tNAME")
			active := ctrl.ActiveID()
			for _, e := range ctrl.Requests() {
				marker := ""
				if e.ID == active {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, e.ID, e.Method, e.DisplayName())
			}
			return tw.Flush()
		},
	}
}
