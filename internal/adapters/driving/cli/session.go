package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage chat sessions",
	Long:  `List, create, select, inspect and delete chat sessions.`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE:  runSessionList,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create and select a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionNew,
}

var sessionSelectCmd = &cobra.Command{
	Use:   "select [name]",
	Short: "Select a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionSelect,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a session",
	Long: `Deletes a session and its messages. Deleting the last session leaves a
fresh, empty default session.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionDelete,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a session's messages",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionShow,
}

var sessionDeleteMessageCmd = &cobra.Command{
	Use:   "delete-message [name] [index]",
	Short: "Delete one message from a session",
	Long:  `Deletes the message at the zero-based index. An out-of-range index does nothing.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionDeleteMessage,
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionSelectCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteMessageCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if conversationStore == nil {
		return errors.New("conversation store not configured")
	}

	current := conversationStore.Current()
	cmd.Println("Sessions:")
	for _, name := range conversationStore.Sessions() {
		msgs, err := conversationStore.Messages(name)
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}
		marker := " "
		if name == current {
			marker = "*"
		}
		cmd.Printf(" %s %s (%d messages)\n", marker, name, len(msgs))
	}
	return nil
}

func runSessionNew(cmd *cobra.Command, args []string) error {
	if conversationStore == nil {
		return errors.New("conversation store not configured")
	}

	if err := conversationStore.CreateSession(args[0]); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	cmd.Printf("Created session: %s\n", args[0])
	return nil
}

func runSessionSelect(cmd *cobra.Command, args []string) error {
	if conversationStore == nil {
		return errors.New("conversation store not configured")
	}

	if err := conversationStore.SelectSession(args[0]); err != nil {
		return fmt.Errorf("failed to select session: %w", err)
	}
	cmd.Printf("Selected session: %s\n", args[0])
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	if conversationStore == nil {
		return errors.New("conversation store not configured")
	}

	if err := conversationStore.DeleteSession(args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	cmd.Printf("Deleted session: %s\n", args[0])
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if conversationStore == nil {
		return errors.New("conversation store not configured")
	}

	name := conversationStore.Current()
	if len(args) == 1 {
		name = args[0]
	}

	msgs, err := conversationStore.Messages(name)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	cmd.Printf("Session: %s\n\n", name)
	if len(msgs) == 0 {
		cmd.Println("No messages yet.")
		return nil
	}
	for i := range msgs {
		cmd.Printf("[%d] Q: %s\n", i, msgs[i].Question)
		cmd.Printf("    A: %s\n", msgs[i].Answer)
		if msgs[i].Model != "" {
			cmd.Printf("    (%s, %s)\n", msgs[i].Model, msgs[i].CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		cmd.Println()
	}
	return nil
}

func runSessionDeleteMessage(cmd *cobra.Command, args []string) error {
	if conversationStore == nil {
		return errors.New("conversation store not configured")
	}

	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid message index %q", args[1])
	}

	if err := conversationStore.DeleteMessage(args[0], index); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	cmd.Printf("Deleted message %d from %s\n", index, args[0])
	return nil
}
