package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ollamadesk/ollamadesk/src/dbconn"
)

// ConnectionsCmd manages the external database connections used by the
// query tools.
type ConnectionsCmd struct {
	Add  ConnectionsAddCmd  `cmd:"" help:"Register a database connection"`
	List ConnectionsListCmd `cmd:"" default:"1" help:"List connections"`
	Use  ConnectionsUseCmd  `cmd:"" help:"Set the active connection"`
	Rm   ConnectionsRmCmd   `cmd:"" help:"Remove a connection"`
	Test ConnectionsTestCmd `cmd:"" help:"Test a connection"`
}

// ConnectionsAddCmd registers a new connection.
type ConnectionsAddCmd struct {
	Name             string `arg:"" help:"Connection name"`
	Type             string `arg:"" help:"Database type (sqlite, postgres, mysql, mongodb)"`
	Host             string `help:"Server host"`
	Port             int    `help:"Server port"`
	Username         string `help:"Username"`
	Password         string `help:"Password"`
	Database         string `help:"Database name, or file path for sqlite"`
	ConnectionString string `help:"Full connection string, overrides the individual fields"`
	Use              bool   `help:"Make this the active connection"`
}

// Run executes the connections add command.
func (c *ConnectionsAddCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	added, err := a.Connections.Add(dbconn.Connection{
		Name:             c.Name,
		Type:             dbconn.Type(c.Type),
		Host:             c.Host,
		Port:             c.Port,
		Username:         c.Username,
		Password:         c.Password,
		Database:         c.Database,
		ConnectionString: c.ConnectionString,
	})
	if err != nil {
		return err
	}

	if c.Use {
		if err := a.Connections.SetActive(added.ID); err != nil {
			return err
		}
	}
	fmt.Printf("Added connection %s (%s)\n", added.Name, added.ID)
	return nil
}

// ConnectionsListCmd lists connections.
type ConnectionsListCmd struct{}

// Run executes the connections list command.
func (c *ConnectionsListCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	conns := a.Connections.List()
	if len(conns) == 0 {
		fmt.Println("No connections configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tACTIVE")
	for _, conn := range conns {
		active := ""
		if conn.IsActive {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", conn.ID, conn.Name, conn.Type, active)
	}
	return w.Flush()
}

// ConnectionsUseCmd sets the active connection.
type ConnectionsUseCmd struct {
	ID string `arg:"" help:"Connection id"`
}

// Run executes the connections use command.
func (c *ConnectionsUseCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Connections.SetActive(c.ID); err != nil {
		return err
	}
	fmt.Printf("Active connection set to %s\n", c.ID)
	return nil
}

// ConnectionsRmCmd removes a connection.
type ConnectionsRmCmd struct {
	ID string `arg:"" help:"Connection id"`
}

// Run executes the connections rm command.
func (c *ConnectionsRmCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Connections.Delete(c.ID); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", c.ID)
	return nil
}

// ConnectionsTestCmd dials a connection to verify it works.
type ConnectionsTestCmd struct {
	ID string `arg:"" optional:"" help:"Connection id, defaults to the active connection"`
}

// Run executes the connections test command.
func (c *ConnectionsTestCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	var conn *dbconn.Connection
	if c.ID != "" {
		conn, err = a.Connections.Get(c.ID)
	} else {
		conn, err = a.Connections.Active()
	}
	if err != nil {
		return err
	}

	if err := a.Connections.Test(context.Background(), conn); err != nil {
		return err
	}
	fmt.Printf("Connection %s OK\n", conn.Name)
	return nil
}
