package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cohortkit/go-cohortgen/internal/backend"
	"github.com/cohortkit/go-cohortgen/pkg/components"
	"github.com/cohortkit/go-cohortgen/pkg/engine"
	"github.com/cohortkit/go-cohortgen/pkg/renderers/prompt"
)

type config struct {
	BaseURL   string `yaml:"base_url"`
	ProjectID string `yaml:"project_id"`
}

func main() {
	configPath := flag.String("config", "", "YAML config file (base_url, project_id)")
	baseURL := flag.String("url", "http://localhost:8000", "backend base URL")
	projectID := flag.String("project", "", "project id")
	flag.Parse()

	cfg := config{BaseURL: *baseURL, ProjectID: *projectID}
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if cfg.ProjectID == "" {
		log.Fatal("a project id is required (-project or config file)")
	}

	ctx := context.Background()

	client, err := backend.New(cfg.BaseURL, cfg.ProjectID)
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}
	eng, err := engine.New(cfg.ProjectID, engine.WithBackend(client), engine.WithLogger(log.Default()))
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	for {
		err := eng.WaitCacheReady(ctx)
		if err == nil {
			break
		}
		if !errors.Is(err, engine.ErrCacheTimeout) {
			log.Fatalf("Cache readiness check failed: %v", err)
		}
		fmt.Println("The dataset cache is still warming up. Press enter to retry, or Ctrl+C to quit.")
		bufio.NewReader(os.Stdin).ReadString('\n')
	}

	if err := eng.LoadMappings(ctx); err != nil {
		log.Fatalf("Failed to load field mappings: %v", err)
	}

	renderer := prompt.New()
	fmt.Println("Describe your cohort in plain language. Commands: :apply, :filter, :filters, :schema, :quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case ":quit", ":q":
			return
		case ":apply":
			view, err := eng.ApplyChanges(ctx)
			if err != nil {
				log.Printf("Apply failed: %v", err)
				continue
			}
			render(ctx, renderer, view)
		case ":filters":
			printFilters(eng)
		case ":filter":
			if err := createFilter(ctx, eng, renderer); err != nil {
				if errors.Is(err, prompt.ErrAborted) {
					fmt.Println("(filter aborted)")
					continue
				}
				log.Printf("Filter failed: %v", err)
			}
		case ":schema":
			printSchema(ctx, eng)
		default:
			view, err := eng.Send(ctx, line)
			if err != nil {
				log.Printf("Turn failed: %v", err)
				continue
			}
			render(ctx, renderer, view)
		}
	}
}

func render(ctx context.Context, renderer *prompt.Renderer, view engine.TurnView) {
	if err := renderer.RenderTurn(ctx, view); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Println("(edit aborted)")
			return
		}
		log.Printf("Render failed: %v", err)
	}
}

// createFilter walks the schema browser: pick a table, pick a field, edit
// the field's widget, then persist the result as a user mapping.
func createFilter(ctx context.Context, eng *engine.Engine, renderer *prompt.Renderer) error {
	driver := renderer.Driver()

	tables, err := eng.Tables(ctx)
	if err != nil {
		return err
	}
	tableNames := make([]string, len(tables))
	for i, t := range tables {
		tableNames[i] = t.TableName
	}
	tableIdx, err := driver.Select(ctx, prompt.SelectConfig{Message: "Table", Options: tableNames})
	if err != nil {
		return err
	}
	table := tableNames[tableIdx]

	fields, err := eng.TableFields(ctx, table)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("table %s has no filterable fields", table)
	}
	fieldNames := make([]string, len(fields))
	for i, f := range fields {
		fieldNames[i] = f.FieldName
	}
	fieldIdx, err := driver.Select(ctx, prompt.SelectConfig{Message: "Field", Options: fieldNames})
	if err != nil {
		return err
	}
	field := fields[fieldIdx]

	var valueRange *components.ValueRange
	if field.MinValue != nil && field.MaxValue != nil {
		valueRange = &components.ValueRange{Min: *field.MinValue, Max: *field.MaxValue, Mean: field.MeanValue}
	}
	values := field.SampleValues
	if len(values) == 0 && field.FieldType == "object" {
		values, err = eng.FieldValues(ctx, table, field.FieldName, 50)
		if err != nil {
			log.Printf("Could not sample values for %s.%s: %v", table, field.FieldName, err)
		}
	}

	spec := components.SpecForField(table+"."+field.FieldName, field.FieldType, field.UniqueValues, valueRange, values)

	var operator string
	var value any
	widget := components.Resolve("manual", field.FieldName, &spec, func(_, _, op string, v any) {
		operator, value = op, v
	})
	if err := renderer.EditWidget(ctx, widget); err != nil {
		return err
	}
	if operator == "" {
		operator = widget.Operator()
		value = widget.Value()
	}

	if err := eng.ApplyFieldFilter(ctx, table, field.FieldName, operator, value); err != nil {
		return err
	}
	fmt.Printf("Filter on %s.%s saved.\n", table, field.FieldName)
	return nil
}

func printFilters(eng *engine.Engine) {
	mappings := eng.Registry().Mappings()
	if len(mappings) == 0 {
		fmt.Println("No field mappings yet.")
		return
	}
	for _, m := range mappings {
		fmt.Printf("  [%s/%s] %s %s %v\n", m.Source, m.Status, m.Key(), m.Operator, m.Value)
	}
	if eng.HasPendingChanges() {
		fmt.Println("Pending edits exist; use :apply to send them.")
	}
}

func printSchema(ctx context.Context, eng *engine.Engine) {
	tables, err := eng.Tables(ctx)
	if err != nil {
		log.Printf("Failed to list tables: %v", err)
		return
	}
	for _, table := range tables {
		fmt.Printf("  %s (%d fields)", table.TableName, table.FieldCount)
		if table.TableDescription != "" {
			fmt.Printf(" - %s", table.TableDescription)
		}
		fmt.Println()
		fields, err := eng.TableFields(ctx, table.TableName)
		if err != nil {
			log.Printf("  failed to list fields: %v", err)
			continue
		}
		for _, field := range fields {
			fmt.Printf("      %-24s %s\n", field.FieldName, field.FieldType)
		}
	}
}

func loadConfig(path string, cfg *config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, cfg)
}
