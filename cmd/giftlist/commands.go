package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/MarcoPoloResearchLab/giftlist/internal/registry"
	"github.com/spf13/cobra"
)

func newCreateCommand(app *application) *cobra.Command {
	var input registry.ListInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a gift list owned by this profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				owner, err := rt.capability(ctx)
				if err != nil {
					return err
				}
				listID, err := rt.store.CreateList(ctx, owner, input)
				if err != nil {
					return err
				}
				shareURL, err := registry.ShareURL(rt.cfg.ShareBaseURL, listID)
				if err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).created(listID, shareURL)
			})
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "List title")
	cmd.Flags().StringVar(&input.Celebrant, "celebrant", "", "Who the list is for")
	cmd.Flags().StringVar(&input.Date, "date", "", "Occasion date, e.g. 2025-01-01")
	return cmd
}

func newShowCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "show <list-id-or-share-link>",
		Short: "Show a list; owners see it as editable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				listID, err := registry.ParseListReference(args[0])
				if err != nil {
					return err
				}
				viewer, err := rt.capability(ctx)
				if err != nil {
					return err
				}
				view, err := rt.store.OpenList(ctx, listID.String(), viewer)
				if err != nil {
					return err
				}
				shareURL, err := registry.ShareURL(rt.cfg.ShareBaseURL, listID)
				if err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).listView(view, shareURL)
			})
		},
	}
}

func newListsCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "List every gift list stored in this profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				viewer, err := rt.capability(ctx)
				if err != nil {
					return err
				}
				lists, err := rt.store.Lists(ctx)
				if err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).lists(lists, viewer)
			})
		},
	}
}

func newGiftCommand(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gift",
		Short: "Add, edit, delete or claim gifts",
	}
	cmd.AddCommand(
		newGiftAddCommand(app),
		newGiftEditCommand(app),
		newGiftDeleteCommand(app),
		newGiftClaimCommand(app),
	)
	return cmd
}

func bindGiftFlags(cmd *cobra.Command, input *registry.GiftInput) {
	cmd.Flags().StringVar(&input.Name, "name", "", "Gift name")
	cmd.Flags().StringVar(&input.Price, "price", "", "Price, e.g. 199.99")
	cmd.Flags().StringVar(&input.Link, "link", "", "Where to buy it")
	cmd.Flags().StringVar(&input.Note, "note", "", "Anything else worth knowing")
}

func newGiftAddCommand(app *application) *cobra.Command {
	var input registry.GiftInput
	cmd := &cobra.Command{
		Use:   "add <list>",
		Short: "Add a gift to a list you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				listID, err := registry.ParseListReference(args[0])
				if err != nil {
					return err
				}
				owner, err := rt.capability(ctx)
				if err != nil {
					return err
				}
				giftID, err := rt.store.AddGift(ctx, listID.String(), owner, input)
				if err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).giftAdded(listID, giftID)
			})
		},
	}
	bindGiftFlags(cmd, &input)
	return cmd
}

func newGiftEditCommand(app *application) *cobra.Command {
	var input registry.GiftInput
	cmd := &cobra.Command{
		Use:   "edit <list> <gift>",
		Short: "Replace a gift's name, price, link and note",
		Long:  "Replace a gift's name, price, link and note. Fields left out are cleared; an empty name becomes \"" + registry.UnnamedGift + "\".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				listID, err := registry.ParseListReference(args[0])
				if err != nil {
					return err
				}
				owner, err := rt.capability(ctx)
				if err != nil {
					return err
				}
				if err := rt.store.EditGift(ctx, listID.String(), args[1], owner, input); err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).status("gift updated", listID, args[1])
			})
		},
	}
	bindGiftFlags(cmd, &input)
	return cmd
}

func newGiftDeleteCommand(app *application) *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "delete <list> <gift>",
		Short: "Permanently remove a gift",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !assumeYes {
				confirmed, err := confirm(cmd, fmt.Sprintf("Delete gift %s? This cannot be undone. [y/N] ", args[1]))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				listID, err := registry.ParseListReference(args[0])
				if err != nil {
					return err
				}
				owner, err := rt.capability(ctx)
				if err != nil {
					return err
				}
				if err := rt.store.DeleteGift(ctx, listID.String(), args[1], owner); err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).status("gift deleted", listID, args[1])
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newGiftClaimCommand(app *application) *cobra.Command {
	var claimer string
	cmd := &cobra.Command{
		Use:   "claim <list> <gift>",
		Short: "Claim an unclaimed gift under your name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				listID, err := registry.ParseListReference(args[0])
				if err != nil {
					return err
				}
				gift, err := rt.store.ClaimGift(ctx, listID.String(), args[1], claimer)
				if err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).claimed(listID, gift)
			})
		},
	}
	cmd.Flags().StringVar(&claimer, "name", "", "Your name, shown to everyone viewing the list")
	return cmd
}

func newTokenCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print this profile's creator token",
		Long:  "Print this profile's creator token. Anyone holding it can edit every list this profile created.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				capability, err := rt.capability(ctx)
				if err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).token(capability)
			})
		},
	}
}

func newImportCommand(app *application) *cobra.Command {
	var adoptToken bool
	cmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Import a browser local-storage export",
		Long:  "Import a JSON object of local-storage keys to values, as saved from the gift-list page. gift_list_* entries are stored verbatim.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var entries map[string]string
			if err := json.Unmarshal(payload, &entries); err != nil {
				return fmt.Errorf("%s is not a JSON object of string values: %w", args[0], err)
			}
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				summary, err := rt.store.ImportEntries(ctx, entries, registry.ImportOptions{AdoptCreatorToken: adoptToken})
				if err != nil {
					return err
				}
				return newRenderer(cmd.OutOrStdout(), rt.cfg.OutputFormat).imported(summary)
			})
		},
	}
	cmd.Flags().BoolVar(&adoptToken, "adopt-token", false, "Replace this profile's creator token with the exported one")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
