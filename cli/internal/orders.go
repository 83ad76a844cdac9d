package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/localchefbazaar/bazaar/internal/api"
)

func newOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place and manage orders",
	}

	cmd.AddCommand(newOrdersListCommand())
	cmd.AddCommand(newOrdersPlaceCommand())
	cmd.AddCommand(newOrdersCancelCommand())
	cmd.AddCommand(newOrdersAcceptCommand())
	cmd.AddCommand(newOrdersDeliverCommand())

	return cmd
}

func printOrders(orders []api.Order) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMEAL\tQTY\tTOTAL\tSTATUS\tPAYMENT")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%d\t$%.2f\t%s\t%s\n",
			o.ID, o.FoodName, o.Quantity, o.Price, o.OrderStatus, o.PaymentStatus)
	}
	return w.Flush()
}

func newOrdersListCommand() *cobra.Command {
	var (
		incoming bool
		page     int
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			if incoming {
				if err := ctx.requireRole(api.RoleChef); err != nil {
					return err
				}
				result, err := ctx.Client.ChefOrders(cmd.Context(), page, limit)
				if err != nil {
					return fmt.Errorf("failed to list orders: %w", err)
				}
				if err := printOrders(result.Orders); err != nil {
					return err
				}
				fmt.Printf("\nPage %d of %d\n", result.Page, result.TotalPages)
				return nil
			}

			if err := ctx.requireRole(); err != nil {
				return err
			}
			orders, err := ctx.Client.UserOrders(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list orders: %w", err)
			}
			return printOrders(orders)
		},
	}

	cmd.Flags().BoolVar(&incoming, "incoming", false, "List incoming orders for your meals (chef)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (with --incoming)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Orders per page (with --incoming)")
	return cmd
}

func newOrdersPlaceCommand() *cobra.Command {
	var (
		quantity int
		address  string
	)

	cmd := &cobra.Command{
		Use:   "place <meal-id>",
		Short: "Place an order for a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)
			if err := ctx.requireRole(); err != nil {
				return err
			}

			if snap := ctx.Store.Snapshot(); snap.Record != nil && snap.Record.Status == api.StatusFraud {
				return fmt.Errorf("your account is restricted and cannot place orders")
			}

			order, err := ctx.Client.PlaceOrder(cmd.Context(), api.OrderInput{
				FoodID:      args[0],
				Quantity:    quantity,
				UserAddress: address,
			})
			if err != nil {
				return fmt.Errorf("failed to place order: %w", err)
			}

			fmt.Printf("Order %s placed: %s x%d, $%.2f\n",
				order.ID, order.FoodName, order.Quantity, order.Price)
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Quantity (1-10)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Delivery address")
	cmd.MarkFlagRequired("address")
	return cmd
}

func newOrdersCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel one of your pending orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)
			if err := ctx.requireRole(); err != nil {
				return err
			}

			if err := ctx.Client.UpdateOrderStatus(cmd.Context(), args[0], api.OrderCancelled); err != nil {
				return fmt.Errorf("failed to cancel order: %w", err)
			}

			fmt.Printf("Order %s cancelled\n", args[0])
			return nil
		},
	}
}

func newOrdersAcceptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <order-id>",
		Short: "Accept a pending order (chef)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)
			if err := ctx.requireRole(api.RoleChef); err != nil {
				return err
			}

			if err := ctx.Client.UpdateOrderStatus(cmd.Context(), args[0], api.OrderAccepted); err != nil {
				return fmt.Errorf("failed to accept order: %w", err)
			}

			fmt.Printf("Order %s accepted\n", args[0])
			return nil
		},
	}
}

func newOrdersDeliverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deliver <order-id>",
		Short: "Mark an accepted order delivered (chef)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)
			if err := ctx.requireRole(api.RoleChef); err != nil {
				return err
			}

			if err := ctx.Client.UpdateOrderStatus(cmd.Context(), args[0], api.OrderDelivered); err != nil {
				return fmt.Errorf("failed to mark order delivered: %w", err)
			}

			fmt.Printf("Order %s delivered\n", args[0])
			return nil
		},
	}
}
