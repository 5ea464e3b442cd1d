package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage user preferences merged into the goal section",
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a preference",
		Args:  cobra.ExactArgs(2),
		Run:   runPrefsSet,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "List stored preferences",
		Run:   runPrefsShow,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove a preference",
		Args:  cobra.ExactArgs(1),
		Run:   runPrefsRm,
	}

	prefsCmd.AddCommand(setCmd, showCmd, rmCmd)
	RootCmd.AddCommand(prefsCmd)
}

func runPrefsSet(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	mem := openMemory(cfg)
	defer mem.Close()

	if err := mem.SetPreference(cmd.Context(), args[0], args[1]); err != nil {
		exitErr("set preference", err)
	}
	fmt.Printf("%s = %s\n", args[0], args[1])
}

func runPrefsShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	mem := openMemory(cfg)
	defer mem.Close()

	prefs, err := mem.Preferences(cmd.Context())
	if err != nil {
		exitErr("list preferences", err)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(prefs, "", "  ")
		fmt.Println(string(b))
		return
	}
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s = %s\n", k, prefs[k])
	}
}

func runPrefsRm(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	mem := openMemory(cfg)
	defer mem.Close()

	if err := mem.RemovePreference(cmd.Context(), args[0]); err != nil {
		exitErr("remove preference", err)
	}
	fmt.Printf("removed %s\n", args[0])
}
