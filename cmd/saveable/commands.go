package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gopsql/logger"
	"github.com/gopsql/saveable"
	"github.com/gopsql/saveable/config"
	"github.com/gopsql/saveable/connect"
	"github.com/gopsql/saveable/site"
	"github.com/spf13/cobra"
)

type app struct {
	configFile string
	driver     string
	conn       saveable.Executor
	site       *site.Site
}

// items opens the connection on first use and returns the DAO of kind.
func (a *app) items(kind string) (*saveable.Items, error) {
	if a.site == nil {
		c, err := config.Load(a.configFile)
		if err != nil {
			return nil, err
		}
		if a.driver != "" {
			c.Database.Driver = a.driver
		}
		options := []interface{}{}
		if a.conn == nil {
			conn, err := connect.Open(c.Database.Driver, c.Database.URL)
			if err != nil {
				return nil, err
			}
			a.conn = conn
		}
		options = append(options, a.conn)
		if c.Log.SQL {
			options = append(options, logger.StandardLogger)
		}
		a.site = site.New(options...)
	}
	items, ok := a.site.Items(kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q, use one of: %s", kind, strings.Join(a.site.Kinds(), ", "))
	}
	return items, nil
}

func (a *app) close() error {
	if c, ok := a.conn.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// execute runs cmd and closes the connection, also after a failed command.
// A command error wins over a close error.
func (a *app) execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "saveable",
		Short:         "Manage roles, templates and fields",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./saveable.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.driver, "driver", "", "database driver: "+strings.Join(connect.Drivers(), ", "))

	rootCmd.AddCommand(
		newSchemaCmd(a),
		newLoadCmd(a),
		newFindCmd(a),
		newGetCmd(a),
		newSaveCmd(a),
		newDeleteCmd(a),
	)
	return rootCmd
}

func newSchemaCmd(a *app) *cobra.Command {
	var drop, apply bool
	cmd := &cobra.Command{
		Use:   "schema <kind>",
		Short: "Print or apply CREATE TABLE of a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := schemaModel(args[0])
			if err != nil {
				return err
			}
			statements := []string{m.Schema()}
			if drop {
				statements = append([]string{m.DropSchema()}, statements...)
			}
			if !apply {
				fmt.Fprint(cmd.OutOrStdout(), strings.Join(statements, "\n"))
				return nil
			}
			items, err := a.items(args[0])
			if err != nil {
				return err
			}
			for _, sql := range statements {
				if err := items.Model().NewSQL(sql).Execute(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "drop the table first")
	cmd.Flags().BoolVar(&apply, "apply", false, "execute the statements instead of printing them")
	return cmd
}

// schemaModel returns the model of kind without connecting.
func schemaModel(kind string) (*saveable.Model, error) {
	s := site.New()
	items, ok := s.Items(kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q, use one of: %s", kind, strings.Join(s.Kinds(), ", "))
	}
	return items.Model(), nil
}

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <kind> [selector]",
		Short: "Load items from the database matching a selector",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.items(args[0])
			if err != nil {
				return err
			}
			var selectors interface{}
			if len(args) > 1 {
				selectors = args[1]
			}
			c, err := items.Load(nil, selectors)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items, c.Items()...)
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <kind> <selector>",
		Short: "Load all items and filter them in memory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.items(args[0])
			if err != nil {
				return err
			}
			if _, err := items.LoadAll(); err != nil {
				return err
			}
			c, err := items.Find(args[1])
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items, c.Items()...)
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id|name>",
		Short: "Print one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, item, err := get(a, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items.Model().TableData(item))
		},
	}
}

func newSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save <kind> [json]",
		Short: "Create or update an item from a JSON object (or stdin)",
		Long: "Create or update an item. Keys are column names. An object with a\n" +
			"non-zero id updates that item, only the given keys change.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.items(args[0])
			if err != nil {
				return err
			}
			var input []byte
			if len(args) > 1 {
				input = []byte(args[1])
			} else if input, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return err
			}
			var ref struct {
				Id int `json:"id"`
			}
			if err := json.Unmarshal(input, &ref); err != nil {
				return err
			}
			item := items.MakeBlankItem()
			if ref.Id != 0 {
				if _, item, err = get(a, args[0], strconv.Itoa(ref.Id)); err != nil {
					return err
				}
			}
			if _, err := items.Model().PermitAllExcept("Id").Assign(item, input); err != nil {
				return err
			}
			if err := items.Save(item); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items.Model().TableData(item))
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id|name>",
		Short: "Delete one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, item, err := get(a, args[0], args[1])
			if err != nil {
				return err
			}
			ok, err := items.Delete(item)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("nothing deleted")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[1])
			return nil
		},
	}
}

// get loads all items of kind and returns them with the item of key.
func get(a *app, kind, key string) (*saveable.Items, saveable.Saveable, error) {
	items, err := a.items(kind)
	if err != nil {
		return nil, nil, err
	}
	if _, err := items.LoadAll(); err != nil {
		return nil, nil, err
	}
	item, ok := items.Get(key)
	if !ok {
		return nil, nil, fmt.Errorf("%s %q: %w", items.Name(), key, saveable.ErrNotFound)
	}
	return items, item, nil
}

// printItems prints items keyed by column name.
func printItems(w io.Writer, items *saveable.Items, list ...saveable.Saveable) error {
	out := make([]saveable.Changes, 0, len(list))
	for _, item := range list {
		out = append(out, items.Model().TableData(item))
	}
	return printJSON(w, out)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
