package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/pivotalhq/pivotal/internal/cache"
	"github.com/pivotalhq/pivotal/internal/clock"
	"github.com/pivotalhq/pivotal/internal/config"
	"github.com/pivotalhq/pivotal/internal/db"
	"github.com/pivotalhq/pivotal/internal/migration"
	"github.com/pivotalhq/pivotal/internal/observability"
	"github.com/pivotalhq/pivotal/internal/organization"
	"github.com/pivotalhq/pivotal/internal/permission"
	"github.com/pivotalhq/pivotal/internal/pricing"
	pricingdomain "github.com/pivotalhq/pivotal/internal/pricing/domain"
	"github.com/pivotalhq/pivotal/internal/ratecard"
	"github.com/pivotalhq/pivotal/internal/redis"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pivotal",
		Short: "Pivotal pricing core CLI",
	}
	root.AddCommand(newMigrateCmd(), newResolveCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				fx.NopLogger,
				config.Module,
				observability.Module,
				db.Module,
				migration.Module,
			)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			if err := app.Start(ctx); err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}
			return app.Stop(context.Background())
		},
	}
}

// lineFile is the JSON shape the resolve harness reads. Prices and
// quantities are decimal strings, never floats.
type lineFile []struct {
	LineNumber        int     `json:"line_number"`
	Description       string  `json:"description"`
	ItemCode          *string `json:"item_code,omitempty"`
	ServiceCategoryID *string `json:"service_category_id,omitempty"`
	UnitPrice         *string `json:"unit_price,omitempty"`
	Quantity          string  `json:"quantity"`
	Unit              string  `json:"unit,omitempty"`
}

func newResolveCmd() *cobra.Command {
	var (
		orgFlag  string
		userFlag string
		fileFlag string
		dateFlag string
		gateFlag string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a batch of quote lines against the org's rate cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, err := snowflake.ParseString(orgFlag)
			if err != nil {
				return fmt.Errorf("invalid --org: %w", err)
			}
			userID, err := snowflake.ParseString(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			effectiveDate := time.Now().UTC()
			if dateFlag != "" {
				effectiveDate, err = time.Parse("2006-01-02", dateFlag)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			lines, err := readLines(fileFlag)
			if err != nil {
				return err
			}

			return runResolve(orgID, userID, lines, effectiveDate, gateFlag)
		},
	}

	cmd.Flags().StringVar(&orgFlag, "org", "", "organization id (required)")
	cmd.Flags().StringVar(&userFlag, "user", "", "user id for the override permission check (required)")
	cmd.Flags().StringVar(&fileFlag, "file", "", "path to the line items JSON file (required)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "effective date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&gateFlag, "gate", "policy", "override gate: policy, allow or deny")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readLines(path string) ([]pricingdomain.LineItemInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file lineFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	lines := make([]pricingdomain.LineItemInput, 0, len(file))
	for _, entry := range file {
		line := pricingdomain.LineItemInput{
			LineNumber:  entry.LineNumber,
			Description: entry.Description,
			ItemCode:    entry.ItemCode,
			Unit:        entry.Unit,
		}

		line.Quantity, err = decimal.NewFromString(entry.Quantity)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid quantity %q", entry.LineNumber, entry.Quantity)
		}
		if entry.UnitPrice != nil {
			price, err := decimal.NewFromString(*entry.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid unit_price %q", entry.LineNumber, *entry.UnitPrice)
			}
			line.UnitPrice = &price
		}
		if entry.ServiceCategoryID != nil {
			categoryID, err := snowflake.ParseString(*entry.ServiceCategoryID)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid service_category_id %q", entry.LineNumber, *entry.ServiceCategoryID)
			}
			line.ServiceCategoryID = &categoryID
		}

		lines = append(lines, line)
	}
	return lines, nil
}

func runResolve(orgID, userID snowflake.ID, lines []pricingdomain.LineItemInput, effectiveDate time.Time, gateMode string) error {
	var resolver pricingdomain.Service

	opts := []fx.Option{
		fx.NopLogger,
		config.Module,
		observability.Module,
		db.Module,
		redis.Module,
		cache.Module,
		fx.Provide(registerSnowflake),
		fx.Provide(func() clock.Clock { return clock.System{} }),
		organization.Module,
		ratecard.Module,
		pricing.Module,
		fx.Populate(&resolver),
	}

	switch gateMode {
	case "policy":
		opts = append(opts, permission.Module)
	case "allow", "deny":
		gate := permission.StaticGate{Allowed: gateMode == "allow"}
		opts = append(opts, fx.Provide(func() pricingdomain.PermissionGate { return gate }))
	default:
		return fmt.Errorf("invalid --gate %q: want policy, allow or deny", gateMode)
	}

	app := fx.New(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	resolution, err := resolver.Resolve(ctx, orgID, userID, lines, effectiveDate)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resolution, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !resolution.OK() {
		return fmt.Errorf("%d of %d lines failed to resolve", len(resolution.Failures), len(resolution.Failures)+len(resolution.Lines))
	}
	return nil
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
