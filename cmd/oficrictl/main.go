// Command oficrictl is a small terminal client for the mesa de partes
// API: login per rol, case listing with search, case detail and the
// perito workflow steps, reusing the stored session file between runs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"

	"oficri/mesapartes/internal/client"
	"oficri/mesapartes/internal/infrastructure/logger"
)

// defaultBaseURL matches the server's default APP_PORT.
const defaultBaseURL = "http://localhost:8081"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("oficrictl", flag.ContinueOnError)
	baseURL := flags.String("url", envOr("OFICRI_URL", defaultBaseURL), "URL base de la API")
	sessionFile := flags.String("sesiones", defaultSessionFile(), "archivo de sesiones")
	logLevel := flags.String("log-level", "warn", "nivel de log (debug|info|warn|error)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() < 1 {
		usage(flags)
		return errors.New("falta el comando")
	}

	log := logger.New("oficrictl", *logLevel, "local")

	c, err := client.New(client.Config{
		BaseURL:     *baseURL,
		SessionFile: *sessionFile,
		Timeout:     30 * time.Second,
		OnSesionExpirada: func() {
			fmt.Fprintln(os.Stderr, "la sesión expiró, vuelva a iniciar sesión con 'oficrictl login'")
		},
	}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, resto := flags.Arg(0), flags.Args()[1:]
	switch cmd {
	case "login":
		return cmdLogin(ctx, c, resto)
	case "logout":
		return c.Sesiones().ClearAll()
	case "listar":
		return cmdListar(ctx, c, resto)
	case "detalle":
		return cmdDetalle(ctx, c, resto)
	case "paso":
		return cmdPaso(ctx, c, resto)
	default:
		usage(flags)
		return fmt.Errorf("comando desconocido: %s", cmd)
	}
}

func cmdLogin(ctx context.Context, c *client.Client, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	rol := flags.String("rol", string(client.RolMesaDePartes), "rol (mesadepartes|admin|perito)")
	cip := flags.String("cip", "", "CIP del usuario")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *cip == "" {
		return errors.New("el CIP es requerido")
	}

	fmt.Fprint(os.Stderr, "contraseña: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("leer contraseña: %w", err)
	}

	ses, err := c.Login(ctx, client.Rol(*rol), *cip, string(password))
	if err != nil {
		return err
	}
	fmt.Printf("sesión iniciada como %s (%s), expira %s\n",
		ses.NombreCompleto, ses.Rol, ses.ExpiresAt.Format(time.RFC3339))
	return nil
}

func cmdListar(ctx context.Context, c *client.Client, args []string) error {
	flags := flag.NewFlagSet("listar", flag.ContinueOnError)
	busqueda := flags.String("busqueda", "", "texto a buscar")
	estado := flags.String("estado", "", "filtrar por estado")
	seccion := flags.String("seccion", "", "sección destino")
	funcion := flags.String("funcion", "", "función de la sección")
	page := flags.Int("page", 1, "página")
	size := flags.Int("size", 20, "tamaño de página")
	if err := flags.Parse(args); err != nil {
		return err
	}

	pagina, err := c.ListarOficios(ctx, client.FiltroOficios{
		Busqueda: *busqueda,
		Estado:   *estado,
		Seccion:  *seccion,
		Funcion:  *funcion,
		Page:     *page,
		Size:     *size,
	})
	if err != nil {
		return err
	}

	for _, of := range pagina.Data {
		fmt.Printf("%-6d %-20s %-28s %-12s %s\n",
			of.ID, of.Numero, of.UltimoEstado, of.Clasificacion, of.Asunto)
	}
	fmt.Printf("página %d de %d (%d oficios)\n", pagina.Page, pagina.Pages, pagina.Total)
	return nil
}

func cmdDetalle(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return errors.New("uso: oficrictl detalle <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("id inválido: %s", args[0])
	}

	crudo, err := c.Detalle(ctx, id)
	if err != nil {
		return err
	}
	return imprimirJSON(crudo)
}

func cmdPaso(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return errors.New("uso: oficrictl paso <ruta> [json]")
	}
	var cuerpo any
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &cuerpo); err != nil {
			return fmt.Errorf("cuerpo inválido: %w", err)
		}
	}

	crudo, err := c.AplicarPaso(ctx, args[0], cuerpo)
	if err != nil {
		return err
	}
	return imprimirJSON(crudo)
}

func imprimirJSON(crudo json.RawMessage) error {
	if len(crudo) == 0 {
		return nil
	}
	var sangrado json.RawMessage = crudo
	var buf any
	if err := json.Unmarshal(crudo, &buf); err == nil {
		if data, err := json.MarshalIndent(buf, "", "  "); err == nil {
			sangrado = data
		}
	}
	fmt.Println(string(sangrado))
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "oficrictl", "sesiones.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func usage(flags *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "uso: oficrictl [opciones] <login|logout|listar|detalle|paso>")
	flags.PrintDefaults()
}
