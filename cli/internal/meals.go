package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/localchefbazaar/bazaar/internal/api"
)

func newMealsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Browse and manage meals",
	}

	cmd.AddCommand(newMealsListCommand())
	cmd.AddCommand(newMealsGetCommand())
	cmd.AddCommand(newMealsCreateCommand())
	cmd.AddCommand(newMealsDeleteCommand())

	return cmd
}

func newMealsListCommand() *cobra.Command {
	var (
		search string
		order  string
		page   int
		limit  int
		mine   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			var meals []api.Meal
			if mine {
				if err := ctx.requireRole(api.RoleChef); err != nil {
					return err
				}
				own, err := ctx.Client.ChefMeals(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list meals: %w", err)
				}
				meals = own
			} else {
				query := api.MealQuery{Page: page, Limit: limit, Search: search}
				if order == "asc" || order == "desc" {
					query.Sort = "price"
					query.Order = order
				}
				result, err := ctx.Client.Meals(cmd.Context(), query)
				if err != nil {
					return fmt.Errorf("failed to list meals: %w", err)
				}
				meals = result.Meals
				defer fmt.Printf("\nPage %d of %d (%d meals)\n", result.Page, result.TotalPages, result.Total)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCHEF\tPRICE\tRATING")
			for _, m := range meals {
				fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%.1f (%d)\n",
					m.ID, m.FoodName, m.ChefName, m.Price, m.Rating, m.TotalReviews)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name")
	cmd.Flags().StringVar(&order, "order", "", "Sort by price (asc or desc)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Meals per page")
	cmd.Flags().BoolVar(&mine, "mine", false, "List only your own meals (chef)")
	return cmd
}

func newMealsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <meal-id>",
		Short: "Show one meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			meal, err := ctx.Client.Meal(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch meal: %w", err)
			}

			fmt.Printf("%s\n", meal.FoodName)
			fmt.Printf("  ID: %s\n", meal.ID)
			fmt.Printf("  Price: $%.2f\n", meal.Price)
			fmt.Printf("  Rating: %.1f (%d reviews)\n", meal.Rating, meal.TotalReviews)
			fmt.Printf("  Chef: %s\n", meal.ChefName)
			if len(meal.Ingredients) > 0 {
				fmt.Printf("  Ingredients: %s\n", strings.Join(meal.Ingredients, ", "))
			}
			if meal.DeliveryArea != "" {
				fmt.Printf("  Delivery area: %s\n", meal.DeliveryArea)
			}
			if meal.EstimatedDeliveryTime != "" {
				fmt.Printf("  Estimated delivery: %s\n", meal.EstimatedDeliveryTime)
			}

			reviews, err := ctx.Client.MealReviews(cmd.Context(), meal.ID)
			if err == nil && len(reviews) > 0 {
				fmt.Printf("\nReviews:\n")
				for _, r := range reviews {
					fmt.Printf("  [%d/5] %s: %s\n", r.Rating, r.ReviewerName, r.Comment)
				}
			}
			return nil
		},
	}
}

func newMealsCreateCommand() *cobra.Command {
	var (
		name        string
		image       string
		price       float64
		ingredients string
		area        string
		eta         string
		experience  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "List a new meal (chef)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)
			if err := ctx.requireRole(api.RoleChef); err != nil {
				return err
			}

			var parts []string
			for _, p := range strings.Split(ingredients, ",") {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}

			meal, err := ctx.Client.CreateMeal(cmd.Context(), api.MealInput{
				FoodName:              name,
				FoodImage:             image,
				Price:                 price,
				Ingredients:           parts,
				DeliveryArea:          area,
				EstimatedDeliveryTime: eta,
				ChefExperience:        experience,
			})
			if err != nil {
				return fmt.Errorf("failed to create meal: %w", err)
			}

			fmt.Printf("Created meal %s (%s)\n", meal.FoodName, meal.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Food name")
	cmd.Flags().StringVar(&image, "image", "", "Image URL")
	cmd.Flags().Float64Var(&price, "price", 0, "Price per serving")
	cmd.Flags().StringVar(&ingredients, "ingredients", "", "Comma-separated ingredients")
	cmd.Flags().StringVar(&area, "area", "", "Delivery area")
	cmd.Flags().StringVar(&eta, "eta", "", "Estimated delivery time, e.g. \"30-45 minutes\"")
	cmd.Flags().StringVar(&experience, "experience", "", "Your cooking experience")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("price")
	cmd.MarkFlagRequired("eta")
	return cmd
}

func newMealsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <meal-id>",
		Short: "Delete one of your meals (chef)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)
			if err := ctx.requireRole(api.RoleChef); err != nil {
				return err
			}

			if err := ctx.Client.DeleteMeal(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete meal: %w", err)
			}

			fmt.Printf("Deleted meal %s\n", args[0])
			return nil
		},
	}
}
