// Package main provides the soarmap CLI and MCP server entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"soarmap/internal/dmtools"
	"soarmap/internal/parser"
	"soarmap/internal/project"
	"soarmap/internal/rules"
	"soarmap/internal/server"
	"soarmap/internal/validate"
)

var rootCmd = &cobra.Command{
	Use:   "soarmap",
	Short: "soarmap - Soar datamap manager",
	Long: `soarmap manages the datamap of a Soar project: the typed schema graph
describing the agent's working memory. It validates rule files against the
datamap and serves editing tools over MCP (stdio transport).`,
}

var serveProject string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.ServeStdio(server.New(serveProject))
	},
}

var newName string

var newCmd = &cobra.Command{
	Use:   "new <dir>",
	Short: "Scaffold a new Soar project",
	Long: `Create a project directory with a datamap document pre-populated with the
standard state attributes and starter .soar sources under src/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := project.NewProject(project.NewFileStore(), args[0], newName)
		if err != nil {
			return err
		}
		fmt.Printf("Project %q created at %s\n", p.Doc.Name, p.Dir())
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file|dir]",
	Short: "Validate rule files against the project datamap",
	Long: `Parse .soar files and check every attribute path and enumeration value
against the datamap. With a directory argument, all **/*.soar files under it
are validated; with no argument, the src/ directory of the current project.
Findings print as path:line:col: severity: message. Exits non-zero when any
error-severity finding exists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var validateProject string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the soarmap version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("soarmap v%s\n", server.Version)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveProject, "project", "p", ".", "project directory for the datamap resource")
	newCmd.Flags().StringVarP(&newName, "name", "n", "", "project name (default: directory basename)")
	validateCmd.Flags().StringVarP(&validateProject, "project", "p", ".", "project directory holding the datamap document")

	rootCmd.AddCommand(serveCmd, newCmd, validateCmd, versionCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := project.Open(project.NewFileStore(), validateProject)
	if err != nil {
		return err
	}
	v := validate.New(p.Doc.Datamap)

	files, err := ruleFiles(p, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .soar files to validate")
	}

	errorCount := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		doc := parser.ParseFile(file, string(data))
		for _, d := range v.ValidateDocument(doc) {
			if d.Severity == rules.SeverityError {
				errorCount++
			}
			fmt.Println(dmtools.FormatDiagnostic(file, d))
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("%d error(s) in %d file(s)", errorCount, len(files))
	}
	fmt.Printf("%d file(s) validated, no errors\n", len(files))
	return nil
}

// ruleFiles resolves the validate argument into a file list: a single .soar
// file, or every **/*.soar under the given (or default src/) directory.
func ruleFiles(p *project.Project, args []string) ([]string, error) {
	target := filepath.Join(p.Dir(), project.SourceDir)
	if len(args) == 1 {
		target = args[0]
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	return doublestar.FilepathGlob(filepath.Join(target, "**", "*.soar"))
}

func main() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
