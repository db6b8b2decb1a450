/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/auth"
	"github.com/drerries/wantedboard/internal/db"
)

var (
	whitelistUsername string
	whitelistNotes    string
)

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage the dashboard login whitelist",
	Long:  "Add, remove and list the Discord accounts allowed to log in to the dashboard. Useful for bootstrapping the first admin before the web UI is reachable.",
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add <discord-user-id>",
	Short: "Allow a Discord account to log in",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhitelistAdd,
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "remove <discord-user-id>",
	Short: "Revoke a Discord account's dashboard access",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhitelistRemove,
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted Discord accounts",
	Args:  cobra.NoArgs,
	RunE:  runWhitelistList,
}

func init() {
	whitelistAddCmd.Flags().StringVar(&whitelistUsername, "username", "", "Discord username for display purposes")
	whitelistAddCmd.Flags().StringVar(&whitelistNotes, "notes", "", "Optional note explaining the entry")

	whitelistCmd.AddCommand(whitelistAddCmd)
	whitelistCmd.AddCommand(whitelistRemoveCmd)
	whitelistCmd.AddCommand(whitelistListCmd)
	rootCmd.AddCommand(whitelistCmd)
}

// openDatabase connects and migrates for the one-shot whitelist commands.
func openDatabase() (*gorm.DB, func(), error) {
	if err := loadConfig(); err != nil {
		return nil, nil, err
	}

	database, err := db.Connect(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	cleanup := func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return database, cleanup, nil
}

func runWhitelistAdd(cmd *cobra.Command, args []string) error {
	database, cleanup, err := openDatabase()
	if err != nil {
		return err
	}
	defer cleanup()

	entry, err := auth.AddToWhitelist(database, args[0], whitelistUsername, "cli", whitelistNotes)
	if err != nil {
		return fmt.Errorf("add to whitelist: %w", err)
	}

	fmt.Printf("whitelisted %s", entry.UserID)
	if entry.Username != "" {
		fmt.Printf(" (%s)", entry.Username)
	}
	fmt.Println()
	return nil
}

func runWhitelistRemove(cmd *cobra.Command, args []string) error {
	database, cleanup, err := openDatabase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := auth.RemoveFromWhitelist(database, args[0]); err != nil {
		return fmt.Errorf("remove from whitelist: %w", err)
	}

	fmt.Printf("removed %s from whitelist\n", args[0])
	return nil
}

func runWhitelistList(cmd *cobra.Command, args []string) error {
	database, cleanup, err := openDatabase()
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := auth.ListWhitelist(database)
	if err != nil {
		return fmt.Errorf("list whitelist: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("whitelist is empty")
		return nil
	}
	for _, entry := range entries {
		line := entry.UserID
		if entry.Username != "" {
			line += "\t" + entry.Username
		}
		if entry.Notes != "" {
			line += "\t" + entry.Notes
		}
		fmt.Println(line)
	}
	return nil
}
