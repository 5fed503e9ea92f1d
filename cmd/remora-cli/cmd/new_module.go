package cmd

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"text/template"

	"github.com/spf13/cobra"
	"golang.org/x/tools/go/ast/astutil"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var moduleName string

// The scaffolded name doubles as a Go package name and a manifest key.
var validModuleName = regexp.MustCompile(`^[a-z][a-z0-9]*$`)

// newModuleCmd represents the new-module command
var newModuleCmd = &cobra.Command{
	Use:   "new-module",
	Short: "Scaffold a new application module",
	Long: `Creates a new module with boilerplate for a module definition and a
page-rendering handler, and registers a factory for it in the application's
module catalog so it can be declared in the manifest right away.`,
	Run: func(cmd *cobra.Command, args []string) {
		if moduleName == "" {
			log.Fatal("Module name is required: --name=<module-name>")
		}
		if !validModuleName.MatchString(moduleName) {
			log.Fatalf("Module name %q must be a lowercase identifier (it becomes a package name)", moduleName)
		}

		if err := generateModule(moduleName); err != nil {
			log.Fatalf("Failed to generate module: %v", err)
		}

		if err := updateFactories(moduleName); err != nil {
			log.Printf("Automatic catalog update failed: %v", err)
			printNextSteps(moduleName) // Fallback to printing instructions
			return
		}

		printSuccessMessage(moduleName)
	},
}

func init() {
	rootCmd.AddCommand(newModuleCmd)
	newModuleCmd.Flags().StringVarP(&moduleName, "name", "n", "", "The name of the new module (e.g., 'inventory')")
}

type TemplateData struct {
	Name       string
	PascalName string
}

func generateModule(name string) error {
	caser := cases.Title(language.English)
	data := TemplateData{
		Name:       name,
		PascalName: caser.String(name),
	}

	moduleDir := filepath.Join("internal", "modules", name)
	if err := os.MkdirAll(moduleDir, 0755); err != nil {
		return fmt.Errorf("failed to create module directory: %w", err)
	}

	if err := generateFile(filepath.Join(moduleDir, "module.go"), moduleTemplate, data); err != nil {
		return err
	}

	return generateFile(filepath.Join(moduleDir, "handler.go"), handlerTemplate, data)
}

func generateFile(path string, tmpl string, data TemplateData) error {
	t, err := template.New("").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// updateFactories adds a factory for the new module to the catalog in
// internal/app/modules.go, so `remora-cli new-module` leaves the project in
// a state where the manifest can declare the module immediately.
func updateFactories(name string) error {
	modulesPath := filepath.Join("internal", "app", "modules.go")
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, modulesPath, nil, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", modulesPath, err)
	}

	newImportPath := fmt.Sprintf("github.com/nfrund/remora/internal/modules/%s", name)
	astutil.AddImport(fset, node, newImportPath)

	added := false
	ast.Inspect(node, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Name.Name != "Factories" {
			return true
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			ret, ok := n.(*ast.ReturnStmt)
			if !ok || len(ret.Results) != 1 {
				return true
			}
			compLit, ok := ret.Results[0].(*ast.CompositeLit)
			if !ok {
				return false
			}

			// The factory closure is spliced in as raw text; go/format
			// prints identifiers verbatim.
			entry := &ast.KeyValueExpr{
				Key: &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(name)},
				Value: ast.NewIdent(fmt.Sprintf(
					"func(cfg module.Config) (module.Module, error) { return %s.New(cfg, %s.Dependencies{Renderer: deps.Renderer}) }",
					name, name)),
			}
			compLit.Elts = append(compLit.Elts, entry)
			added = true
			return false
		})
		return false
	})

	if !added {
		return fmt.Errorf("could not find the Factories catalog in %s", modulesPath)
	}

	return writeASTToFile(fset, node, modulesPath)
}

func printSuccessMessage(name string) {
	fmt.Printf("✅ Successfully created module '%s' in internal/modules/%s/\n", name, name)
	fmt.Println("✅ Registered a factory in 'internal/app/modules.go'")
	fmt.Println("-----------------------------------------------------------------")
	fmt.Print("\nDeclare the module in your manifest (remora.yaml) to load it:\n\n")
	fmt.Printf(`modules:
  - name: %s
    prefix: /%s
`, name, name)
	fmt.Println("\n-----------------------------------------------------------------")
	fmt.Println("Ready to start building your new module!")
}

func printNextSteps(name string) {
	fmt.Printf("✅ Successfully created module '%s' in internal/modules/%s/\n\n", name, name)
	fmt.Println("Next steps:")
	fmt.Println("-----------------------------------------------------------------")
	fmt.Print("\n1. Register the module in 'internal/app/modules.go':\n\n")
	fmt.Printf(`import "github.com/nfrund/remora/internal/modules/%s"

"%s": func(cfg module.Config) (module.Module, error) {
	return %s.New(cfg, %s.Dependencies{Renderer: deps.Renderer})
},
`, name, name, name, name)
	fmt.Print("\n2. Declare it in your manifest (remora.yaml):\n\n")
	fmt.Printf(`modules:
  - name: %s
    prefix: /%s
`, name, name)
	fmt.Println("-----------------------------------------------------------------")
}

func writeASTToFile(fset *token.FileSet, node *ast.File, filename string) error {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, node); err != nil {
		return fmt.Errorf("failed to format AST: %w", err)
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", filename, err)
	}
	return nil
}

const moduleTemplate = `package {{.Name}}

import (
	"context"

	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/rendering"
)

// {{.PascalName}}Module serves the {{.Name}} pages.
type {{.PascalName}}Module struct {
	*module.Node
	deps Dependencies
}

// Dependencies holds the services the module needs. The zero value is
// usable; missing services fall back to defaults at start.
type Dependencies struct {
	Renderer rendering.Renderer
}

// New builds the module from the record its parent hands down.
func New(cfg module.Config, deps Dependencies) (*{{.PascalName}}Module, error) {
	m := &{{.PascalName}}Module{deps: deps}
	node, err := module.New(m, cfg)
	if err != nil {
		return nil, err
	}
	m.Node = node
	return m, nil
}

// Start registers the module's routes.
func (m *{{.PascalName}}Module) Start(ctx context.Context) error {
	renderer := m.deps.Renderer
	if renderer == nil {
		renderer = rendering.NewUniversalRenderer()
	}

	h := NewHandler(renderer)
	m.Router().GET("", h.Get)

	m.Log().Info("Routes registered")
	return nil
}
`

const handlerTemplate = `package {{.Name}}

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/remora/internal/rendering"
	"github.com/nfrund/remora/internal/view"
)

// Handler manages the HTTP requests for the {{.Name}} module.
type Handler struct {
	renderer rendering.Renderer
}

// NewHandler creates a new handler.
func NewHandler(renderer rendering.Renderer) *Handler {
	return &Handler{renderer: renderer}
}

// Get renders the module's main page.
func (h *Handler) Get(c echo.Context) error {
	page := view.Layout("{{.PascalName}}", greeting())
	return h.renderer.RenderPage(c, http.StatusOK, page)
}

func greeting() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<h1>Hello from the {{.Name}} module!</h1>")
		return err
	})
}
`
