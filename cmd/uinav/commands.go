package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/v0xg/uinav/internal/ai"
	"github.com/v0xg/uinav/internal/appliance"
	"github.com/v0xg/uinav/internal/executor"
	"github.com/v0xg/uinav/internal/navigator"
	"github.com/v0xg/uinav/internal/services"
)

func stepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the registered navigation steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := buildRegistry(cfg.Navigation.Graphs, newLogger(cfg.Log.Verbosity))
			if err != nil {
				return err
			}
			return printSteps(cmd.OutOrStdout(), reg)
		},
	}
}

// printSteps writes one line per step with its prerequisite.
func printSteps(w io.Writer, reg *navigator.Registry) error {
	for _, entity := range reg.EntityTypes() {
		for _, name := range reg.Steps(entity) {
			step, err := reg.Lookup(entity, name)
			if err != nil {
				return err
			}
			prereq := step.Prerequisite
			switch {
			case prereq.IsRoot():
				fmt.Fprintf(w, "%s/%s (root)\n", entity, name)
			case prereq.IsRelated():
				fmt.Fprintf(w, "%s/%s ← related %s\n", entity, name, prereq.Step())
			default:
				fmt.Fprintf(w, "%s/%s ← %s\n", entity, name, prereq.Step())
			}
		}
	}
	return nil
}

func navigateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "navigate <type> <name> <step>",
		Short: "Walk to a step of an entity",
		Long: `navigate resolves the prerequisite chain of <step> and performs it.

Example:
  uinav navigate MyService svc1 Edit
  uinav navigate host esx1 Details --graph graphs/hosts.yaml --record host.gif`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg.Log.Verbosity)
			s, err := openSession(cfg, log, record != "")
			if err != nil {
				return err
			}

			entity := s.entity(args[0], args[1])
			step := navigator.StepName(args[2])
			path, err := s.app.Navigator.Path(entity, step)
			if err != nil {
				s.browser.Close()
				return err
			}
			hops := make([]string, len(path))
			for i, hop := range path {
				hops[i] = hop.String()
			}
			fmt.Printf("→ Navigating %s... ", strings.Join(hops, " → "))
			if _, err := s.app.Navigator.NavigateTo(cmd.Context(), entity, step); err != nil {
				fmt.Println("failed")
				s.browser.Close()
				return err
			}
			fmt.Println("done")
			return s.finish(record, fps)
		},
	}
	addRecordFlags(cmd)
	return cmd
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&record, "record", "o", "", "Record one frame per step into this GIF")
	cmd.Flags().IntVar(&fps, "fps", 1, "Frames per second of the recording")
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run a workflow on a service under Services > My Services",
	}

	workflow := func(use, short, progress string, run func(ctx context.Context, svc *services.MyService) error) *cobra.Command {
		c := &cobra.Command{
			Use:   use + " <name>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				s, err := openSession(cfg, newLogger(cfg.Log.Verbosity), record != "")
				if err != nil {
					return err
				}
				svc := services.New(s.app, args[0])

				fmt.Printf("→ %s %s... ", progress, svc.Name)
				if err := run(cmd.Context(), svc); err != nil {
					fmt.Println("failed")
					s.browser.Close()
					return err
				}
				fmt.Println("done")
				return s.finish(record, fps)
			},
		}
		addRecordFlags(c)
		return c
	}

	var vm string
	retire := workflow("retire", "Retire a service and wait for it", "Retiring", func(ctx context.Context, svc *services.MyService) error {
		svc.VMName = vm
		return svc.Retire(ctx)
	})
	retire.Flags().StringVar(&vm, "vm", "", "VM owned by the service, waited on until powered off")

	var description string
	del := workflow("delete", "Delete a service", "Deleting", func(ctx context.Context, svc *services.MyService) error {
		svc.Description = description
		return svc.Delete(ctx)
	})
	del.Flags().StringVar(&description, "description", "", "Service description, shown in the confirmation instead of the name")

	exists := workflow("exists", "Check whether a service exists", "Looking up", func(ctx context.Context, svc *services.MyService) error {
		ok, err := svc.Exists(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("service %s not found", svc.Name)
		}
		return nil
	})

	cmd.AddCommand(retire, del, exists)
	return cmd
}

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <url> <prompt>",
		Short: "Draft a scripted step for the page at url using AI",
		Long: `suggest logs in, opens <url>, crawls its interactive elements and asks an
AI provider for the actions that lead where <prompt> describes. The result is
printed as a step definition for a --graph file.

Example:
  uinav suggest "https://cfme.example.com/host/show_list" "open the details of host {name}"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, prompt := args[0], args[1]
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("provider") {
				cfg.AI.Provider = provider
			}
			if cmd.Flags().Changed("model") {
				cfg.AI.Model = model
			}
			log := newLogger(cfg.Log.Verbosity)

			aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Model)
			if err != nil {
				return fmt.Errorf("AI provider init failed: %w", err)
			}

			s, err := openSession(cfg, log, false)
			if err != nil {
				return err
			}
			defer s.browser.Close()

			if _, err := s.app.Navigator.NavigateTo(cmd.Context(), s.app, appliance.LoggedIn); err != nil {
				return err
			}

			fmt.Printf("→ Crawling %s... ", url)
			if err := s.browser.Navigate(url); err != nil {
				fmt.Println("failed")
				return err
			}
			pageMap, err := s.browser.Crawl()
			if err != nil {
				fmt.Println("failed")
				return fmt.Errorf("crawl failed: %w", err)
			}
			fmt.Printf("done (found %d interactive elements)\n", len(pageMap.Elements))

			fmt.Printf("→ Drafting step via %s... ", cfg.AI.Provider)
			actions, err := aiProvider.SuggestActions(cmd.Context(), pageMap, prompt)
			if err != nil {
				fmt.Println("failed")
				return fmt.Errorf("action generation failed: %w", err)
			}
			fmt.Printf("done (%d actions)\n", len(actions))
			for i, action := range actions {
				fmt.Printf("  [%d] %s\n", i+1, action)
			}
			return writeStep(os.Stdout, actions)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: claude, openai (default: from config or claude)")
	cmd.Flags().StringVar(&model, "model", "", "Specific model override")
	return cmd
}

// writeStep prints actions as a graph step definition.
func writeStep(w io.Writer, actions []executor.Action) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(map[string]executor.StepDef{"NewStep": {Actions: actions}})
}
