package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"mpcereform/internal/graph"
	"mpcereform/internal/store"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up migrated agents from the CLI",
	}
	cmd.AddCommand(queryKeyCmd())
	cmd.AddCommand(queryAgentCmd())
	cmd.AddCommand(querySearchCmd())
	cmd.AddCommand(queryCypherCmd())
	return cmd
}

func queryKeyCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "key <legacy code>",
		Short: "Show the agent a client or author code resolved to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryKey(namespace, args[0])
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "client", "Key namespace: client or author")
	return cmd
}

func runQueryKey(namespace, key string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	link, err := db.ResolveKey(ctx, namespace, strings.TrimSpace(key))
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stdout, "No agent for %s key %q.\n", namespace, key)
		return nil
	}
	if err != nil {
		return err
	}
	agent, err := db.GetAgent(ctx, link.AgentCode)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s %s -> %s (%s)\n", link.Namespace, link.Key, agent.Code, agent.Name)
	if link.Source != "" {
		fmt.Fprintf(os.Stdout, "Source: %s\n", link.Source)
	}
	return nil
}

func queryAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent <code>",
		Short: "Display an agent and its legacy keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryAgent(args[0])
		},
	}
}

func runQueryAgent(code string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	agent, err := db.GetAgent(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stdout, "No agent found for %q.\n", code)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Code: %s\n", agent.Code)
	fmt.Fprintf(os.Stdout, "Name: %s\n", agent.Name)
	if agent.Corporate {
		fmt.Fprintln(os.Stdout, "Corporate: yes")
	}
	printField("Other names", agent.OtherNames)
	printField("Sex", agent.Sex)
	printField("Title", agent.Title)
	printField("Designation", agent.Designation)
	printField("Status", agent.Status)
	printField("Start date", agent.StartDate)
	printField("End date", agent.EndDate)
	printField("Notes", agent.Notes)

	keys, err := db.KeysForAgent(ctx, code)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	fmt.Fprintln(os.Stdout, "Keys:")
	for _, k := range keys {
		fmt.Fprintf(os.Stdout, "  %s %s (%s)\n", k.Namespace, k.Key, k.Source)
	}
	return nil
}

func printField(label string, value *string) {
	if v := store.Deref(value); v != "" {
		fmt.Fprintf(os.Stdout, "%s: %s\n", label, v)
	}
}

func querySearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search agents by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuerySearch(strings.Join(args, " "), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	return cmd
}

func runQuerySearch(query string, limit int) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	results, err := db.SearchAgents(ctx, query, limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "No matches found.")
		return nil
	}
	for _, agent := range results {
		kind := "person"
		if agent.Corporate {
			kind = "corporate"
		}
		fmt.Fprintf(os.Stdout, "%s  %s (%s)\n", agent.Code, agent.Name, kind)
	}
	return nil
}

func queryCypherCmd() *cobra.Command {
	var paramPairs []string
	cmd := &cobra.Command{
		Use:   "cypher <query>",
		Short: "Execute a raw Cypher query against the exported graph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramPairs)
			if err != nil {
				return err
			}
			return runCypher(strings.Join(args, " "), params)
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Query parameter as key=value (repeatable)")
	return cmd
}

func runCypher(query string, params map[string]any) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := graph.NewClient(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	rows, err := client.RunCypher(ctx, query, params)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}

func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any)
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid param %q: expected key=value", pair)
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			return nil, fmt.Errorf("invalid param %q: empty key", pair)
		}
		params[key] = strings.TrimSpace(parts[1])
	}
	return params, nil
}
