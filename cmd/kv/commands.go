package kv

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/keep/cmd/util"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Long: `Sets the value for a key. The value is parsed as JSON (e.g. 42, true, {"a":1}),
if this fails it is stored as string. Use --string to always store a string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			forceString, _ := cmd.Flags().GetBool("string")
			if err := kvStore.SetItem(args[0], util.ParseValue(args[1], forceString)); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key (as JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, ok, err := kvStore.GetItem(key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("key %q not found", key)
			}
			out, err := util.FormatValue(value)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.RemoveItem(args[0]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Deletes all key value pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.Clear(); err != nil {
				return err
			}
			fmt.Println("clear successfully")
			return nil
		},
	}
	dataCmd = &cobra.Command{
		Use:   "data",
		Short: "Prints all key value pairs as JSON object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := kvStore.Data()
			if err != nil {
				return err
			}
			return printJSON(data)
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Prints all keys, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := kvStore.Keys()
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
	valuesCmd = &cobra.Command{
		Use:   "values",
		Short: "Prints all values as JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := kvStore.Values()
			if err != nil {
				return err
			}
			return printJSON(values)
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len",
		Short: "Prints the number of keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := kvStore.Length()
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
)

func init() {
	setCmd.Flags().Bool("string", false, util.WrapString("Store the value as string, even if it is valid JSON"))
}

// printJSON prints v as indented JSON
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
