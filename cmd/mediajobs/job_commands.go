package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediajobs/internal/api"
	"mediajobs/internal/ipc"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	var req api.EnqueueRequest
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "enqueue <input>",
		Short: "Queue a download or conversion job",
		Example: "  mediajobs enqueue --engine yt-dlp https://example.com/watch?v=abc\n" +
			"  mediajobs enqueue --engine ffmpeg --preset webm-vp9 ~/clips/raw.mov",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Input = strings.TrimSpace(args[0])
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Enqueue(req)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s\n", resp.ID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Engine, "engine", "e", "", "Engine to run (yt-dlp, ffmpeg, imagemagick)")
	flags.StringVar(&req.Kind, "kind", "", "Job kind (download or convert); inferred from the engine when empty")
	flags.StringVarP(&req.Output, "output", "o", "", "Output directory")
	flags.StringVarP(&req.Options.Preset, "preset", "p", "", "Engine preset (see `mediajobs presets`)")
	flags.StringVar(&req.Options.CookiesFile, "cookies", "", "Cookies file passed to yt-dlp")
	flags.StringVar(&req.Options.CookiesFromBrowser, "cookies-from-browser", "", "Browser to read cookies from")
	flags.StringVar(&req.Options.RateLimit, "rate-limit", "", "Download rate limit, e.g. 2M")
	flags.StringVar(&req.Options.Proxy, "proxy", "", "Proxy URL for downloads")
	flags.IntVar(&req.Options.Fragments, "fragments", 0, "Concurrent fragment downloads")
	flags.StringVar(&req.Options.Resolution, "resolution", "", "Target resolution for the advanced preset")
	flags.StringVar(&req.Options.Quality, "quality", "", "Quality for the advanced preset")
	flags.StringVar(&req.Options.Audio, "audio", "", "Audio setting for the advanced preset")
	flags.StringArrayVar(&req.Options.ExtraArgs, "arg", nil, "Extra argument appended to the engine command (repeatable)")
	flags.BoolVar(&asJSON, "json", false, "Print the response as JSON")
	_ = cmd.MarkFlagRequired("engine")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show active jobs and recent history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.List()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderListing(resp))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the listing as JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job including its output tail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Describe(strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Job)
				}
				out := cmd.OutOrStdout()
				for _, line := range renderJobDetail(resp.Job, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the job as JSON")
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel(id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if resp.Canceled {
					fmt.Fprintf(out, "Canceled job %s\n", id)
				} else {
					fmt.Fprintf(out, "Job %s is not active; nothing to cancel\n", id)
				}
				return nil
			})
		},
	}
}

func newCancelAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every queued and running job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CancelAll()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Canceled %d job(s)\n", resp.Canceled)
				return nil
			})
		},
	}
}

func newRootDirCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "root",
		Short: "Manage the workflow root that owns job history",
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "set <dir>",
		Short: "Switch the daemon to a new workflow root",
		Long: "Switch the daemon to a new workflow root.\n\n" +
			"Running jobs are canceled and the history under the new root is loaded.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetRoot(strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Workflow root set to %s\n", resp.Root)
				return nil
			})
		},
	})
	return rootCmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test ntfy notification through the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if resp.Sent {
					fmt.Fprintln(out, "Test notification sent")
					return nil
				}
				fmt.Fprintf(out, "Notification not sent: %s\n", resp.Message)
				return nil
			})
		},
	}
}
