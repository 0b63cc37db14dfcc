package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/elee1766/naochat/src/projectconfig"
	"github.com/elee1766/naochat/src/storage"
)

// ProjectCmd manages the default project
type ProjectCmd struct {
	LLM      ProjectLLMCmd      `cmd:"" name:"llm" help:"Model provider keys"`
	Slack    ProjectSlackCmd    `cmd:"" help:"Slack credentials"`
	Provider ProjectProviderCmd `cmd:"" help:"Show the provider chats will use"`
	Members  ProjectMembersCmd  `cmd:"" help:"List project members"`
}

// withConfigs opens the environment and hands the project config service to fn.
func withConfigs(cli *CLI, fn func(ctx context.Context, e *env, svc *projectconfig.Service) error) error {
	ctx := context.Background()
	e, err := openEnv(ctx, cli)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(ctx, e, projectconfig.New(e.db.DB(), projectconfig.WithLogger(e.logger)))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ProjectLLMCmd manages provider keys
type ProjectLLMCmd struct {
	List   ProjectLLMListCmd   `cmd:"" help:"List stored keys, redacted"`
	Set    ProjectLLMSetCmd    `cmd:"" help:"Store a provider key"`
	Delete ProjectLLMDeleteCmd `cmd:"" help:"Remove a provider key"`
}

// ProjectLLMListCmd lists provider keys
type ProjectLLMListCmd struct {
	Format string `help:"Output format (table, json)" default:"table" enum:"table,json"`
}

// Run executes the llm list command
func (c *ProjectLLMListCmd) Run(kctx *kong.Context, cli *CLI) error {
	return withConfigs(cli, func(ctx context.Context, e *env, svc *projectconfig.Service) error {
		configs, err := svc.Get(ctx, e.project.ID)
		if err != nil {
			return err
		}
		if c.Format == "json" {
			return printJSON(kctx.Stdout, configs)
		}
		w := tabwriter.NewWriter(kctx.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tKEY\tSOURCE\tUPDATED")
		for _, cfg := range configs.ProjectConfigs {
			fmt.Fprintf(w, "%s\t%s\tproject\t%s\n", cfg.Provider, cfg.APIKeyPreview, cfg.UpdatedAt.Format("2006-01-02 15:04"))
		}
		for _, p := range configs.EnvProviders {
			fmt.Fprintf(w, "%s\t-\tenvironment\t-\n", p)
		}
		return w.Flush()
	})
}

// ProjectLLMSetCmd stores a provider key
type ProjectLLMSetCmd struct {
	Provider string `arg:"" enum:"anthropic,openai" help:"Provider (anthropic, openai)"`
	APIKey   string `required:"" env:"NAOCHAT_PROVIDER_API_KEY" help:"API key"`
}

// Run executes the llm set command
func (c *ProjectLLMSetCmd) Run(kctx *kong.Context, cli *CLI) error {
	return withConfigs(cli, func(ctx context.Context, e *env, svc *projectconfig.Service) error {
		view, err := svc.Upsert(ctx, e.project.ID, storage.LLMProvider(c.Provider), c.APIKey)
		if err != nil {
			return err
		}
		fmt.Fprintf(kctx.Stdout, "Stored %s key %s\n", view.Provider, view.APIKeyPreview)
		return nil
	})
}

// ProjectLLMDeleteCmd removes a provider key
type ProjectLLMDeleteCmd struct {
	Provider string `arg:"" enum:"anthropic,openai" help:"Provider (anthropic, openai)"`
}

// Run executes the llm delete command
func (c *ProjectLLMDeleteCmd) Run(kctx *kong.Context, cli *CLI) error {
	return withConfigs(cli, func(ctx context.Context, e *env, svc *projectconfig.Service) error {
		if err := svc.Delete(ctx, e.project.ID, storage.LLMProvider(c.Provider)); err != nil {
			return err
		}
		fmt.Fprintf(kctx.Stdout, "Removed %s key\n", c.Provider)
		return nil
	})
}

// ProjectSlackCmd manages Slack credentials
type ProjectSlackCmd struct {
	Show   ProjectSlackShowCmd   `cmd:"" help:"Show Slack credentials, redacted"`
	Set    ProjectSlackSetCmd    `cmd:"" help:"Store Slack credentials"`
	Delete ProjectSlackDeleteCmd `cmd:"" help:"Remove Slack credentials"`
}

// ProjectSlackShowCmd shows Slack credentials
type ProjectSlackShowCmd struct{}

// Run executes the slack show command
func (c *ProjectSlackShowCmd) Run(kctx *kong.Context, cli *CLI) error {
	return withConfigs(cli, func(ctx context.Context, e *env, svc *projectconfig.Service) error {
		view, err := svc.GetSlack(ctx, e.project.ID)
		if err != nil {
			return err
		}
		return printJSON(kctx.Stdout, view)
	})
}

// ProjectSlackSetCmd stores Slack credentials
type ProjectSlackSetCmd struct {
	BotToken      string `required:"" env:"NAOCHAT_SLACK_BOT_TOKEN" help:"Bot token"`
	SigningSecret string `required:"" env:"NAOCHAT_SLACK_SIGNING_SECRET" help:"Signing secret"`
}

// Run executes the slack set command
func (c *ProjectSlackSetCmd) Run(kctx *kong.Context, cli *CLI) error {
	return withConfigs(cli, func(ctx context.Context, e *env, svc *projectconfig.Service) error {
		preview, err := svc.UpsertSlack(ctx, e.project.ID, c.BotToken, c.SigningSecret)
		if err != nil {
			return err
		}
		return printJSON(kctx.Stdout, preview)
	})
}

// ProjectSlackDeleteCmd removes Slack credentials
type ProjectSlackDeleteCmd struct{}

// Run executes the slack delete command
func (c *ProjectSlackDeleteCmd) Run(kctx *kong.Context, cli *CLI) error {
	return withConfigs(cli, func(ctx context.Context, e *env, svc *projectconfig.Service) error {
		if err := svc.DeleteSlack(ctx, e.project.ID); err != nil {
			return err
		}
		fmt.Fprintln(kctx.Stdout, "Removed Slack credentials")
		return nil
	})
}

// ProjectProviderCmd shows the active provider
type ProjectProviderCmd struct{}

// Run executes the provider command
func (c *ProjectProviderCmd) Run(kctx *kong.Context, cli *CLI) error {
	return withConfigs(cli, func(ctx context.Context, e *env, svc *projectconfig.Service) error {
		provider, err := svc.ResolveActiveProvider(ctx, e.project.ID)
		if err != nil {
			return err
		}
		if provider == "" {
			fmt.Fprintln(kctx.Stdout, "No model provider is configured")
			return nil
		}
		fmt.Fprintf(kctx.Stdout, "%s (%s)\n", provider, e.cfg.Agent.ModelFor(string(provider)))
		return nil
	})
}

// ProjectMembersCmd lists project members
type ProjectMembersCmd struct{}

// Run executes the members command
func (c *ProjectMembersCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	e, err := openEnv(ctx, cli)
	if err != nil {
		return err
	}
	defer e.Close()

	members, err := storage.ListProjectMembers(ctx, e.db.DB(), e.project.ID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(kctx.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tJOINED")
	for _, m := range members {
		user, err := storage.GetUserByID(ctx, e.db.DB(), m.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", user.Email, user.Name, m.Role, m.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
