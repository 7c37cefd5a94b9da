package ctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	catalogapp "github.com/Apurer/campus-canteen/internal/domains/catalog/application"
	catalogtypes "github.com/Apurer/campus-canteen/internal/domains/catalog/application/types"
	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/adapters/customers"
	orderapp "github.com/Apurer/campus-canteen/internal/domains/orders/application"
	ordertypes "github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	userapp "github.com/Apurer/campus-canteen/internal/domains/users/application"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

func newResetStockCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stock",
		Short: "Refill every menu item to its daily quantity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := catalogapp.NewService(s.env.Backends.Menu).ResetDailyStock(cmd.Context())
			if err != nil {
				return fmt.Errorf("reset stock: %w", err)
			}
			fmt.Fprintf(out(cmd), "reset %d menu items\n", n)
			return nil
		},
	}
}

func newPurgeSessionsCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired login sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users := userapp.NewService(s.env.Backends.Users, s.env.Backends.Sessions, userapp.WithClock(s.env.Now))
			n, err := users.PurgeExpiredSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("purge sessions: %w", err)
			}
			fmt.Fprintf(out(cmd), "purged %d sessions\n", n)
			return nil
		},
	}
}

var seedDishes = map[catalogdomain.Category][]string{
	catalogdomain.CategoryMainCourse: {"Chicken Kottu", "Vegetable Fried Rice", "Rice and Curry", "Egg Noodles", "Chicken Biryani", "Dhal Curry Set"},
	catalogdomain.CategoryShortEats:  {"Fish Bun", "Vegetable Roti", "Chicken Roll", "Egg Pastry", "Samosa", "Ulundu Vadai"},
	catalogdomain.CategoryBeverages:  {"Milk Tea", "Iced Coffee", "Lime Juice", "Faluda", "Ginger Tea", "Mango Smoothie"},
	catalogdomain.CategoryDesserts:   {"Watalappan", "Curd and Treacle", "Chocolate Biscuit Pudding", "Fruit Salad", "Ice Cream Cup"},
}

var seedTags = []string{
	string(catalogdomain.TagVegetarian), string(catalogdomain.TagVegan),
	string(catalogdomain.TagHalal), string(catalogdomain.TagSpicy),
}

func newSeedMenuCommand(s *session) *cobra.Command {
	var (
		operator string
		count    int
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "seed-menu",
		Short: "Create demo menu items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return errors.New("--count must be positive")
			}
			caller, err := s.operator(cmd, operator)
			if err != nil {
				return err
			}
			fake := faker.NewWithSeed(rand.NewSource(seed))
			menu := catalogapp.NewService(s.env.Backends.Menu)
			categories := catalogdomain.Categories()
			for i := 0; i < count; i++ {
				input := randomMenuItem(fake, categories[i%len(categories)])
				item, err := menu.CreateMenuItem(cmd.Context(), caller, input)
				if err != nil {
					return fmt.Errorf("seed %q: %w", *input.Name, err)
				}
				fmt.Fprintf(out(cmd), "created #%d %s (%s) at %s\n", item.ID, item.Name, item.Category, item.Price.StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "email of the staff or admin account performing the seed")
	cmd.Flags().IntVar(&count, "count", 12, "number of menu items to create")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for generated items")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func randomMenuItem(fake faker.Faker, category catalogdomain.Category) catalogtypes.MenuItemMutationInput {
	name := fake.RandomStringElement(seedDishes[category])
	description := fake.Lorem().Sentence(8)
	categoryName := string(category)
	price := decimal.NewFromInt(int64(fake.IntBetween(8, 120)) * 10)
	prep := int32(fake.IntBetween(5, 30))
	daily := int32(fake.IntBetween(20, 100))
	available := true
	var tags []string
	if fake.Boolean().Bool() {
		tags = append(tags, fake.RandomStringElement(seedTags))
	}
	return catalogtypes.MenuItemMutationInput{
		Name:               &name,
		Description:        &description,
		Price:              &price,
		Category:           &categoryName,
		Available:          &available,
		PreparationMinutes: &prep,
		DailyQuantity:      &daily,
		RemainingQuantity:  &daily,
		DietaryTags:        tags,
	}
}

func newExportAnalyticsCommand(s *session) *cobra.Command {
	var (
		operator string
		from     string
		to       string
		bucket   string
		region   string
		key      string
	)
	cmd := &cobra.Command{
		Use:   "export-analytics",
		Short: "Export the order analytics report as JSON, to stdout or S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caller, err := s.operator(cmd, operator)
			if err != nil {
				return err
			}
			b := s.env.Backends
			orders := orderapp.NewService(b.UnitOfWork, b.Orders, b.MenuStock,
				orderapp.WithCustomerDirectory(customers.NewDirectory(b.Users)),
				orderapp.WithClock(s.env.Now),
			)
			report, err := orders.Analytics(cmd.Context(), caller, ordertypes.AnalyticsInput{StartDate: from, EndDate: to})
			if err != nil {
				return fmt.Errorf("build analytics: %w", err)
			}
			body, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			if bucket == "" {
				_, err = fmt.Fprintln(out(cmd), string(body))
				return err
			}
			uploader, err := s.env.NewUploader(cmd.Context(), region, bucket)
			if err != nil {
				return err
			}
			if key == "" {
				key = fmt.Sprintf("analytics/orders-%s.json", s.env.Now().UTC().Format("20060102T150405Z"))
			}
			location, err := uploader.Upload(cmd.Context(), key, "application/json", body)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "exported analytics to %s\n", location)
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "email of the admin account requesting the report")
	cmd.Flags().StringVar(&from, "from", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket; prints to stdout when empty")
	cmd.Flags().StringVar(&region, "region", "us-east-1", "AWS region of the bucket")
	cmd.Flags().StringVar(&key, "key", "", "object key (default analytics/orders-<timestamp>.json)")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

// operator resolves the account a command acts as. Authorization happens in the services.
func (s *session) operator(cmd *cobra.Command, email string) (auth.Principal, error) {
	user, err := s.env.Backends.Users.GetByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return auth.Principal{}, fmt.Errorf("operator %s: %w", email, err)
	}
	if !user.Active {
		return auth.Principal{}, fmt.Errorf("operator %s is deactivated", email)
	}
	return user.Principal(), nil
}
