// seed_subsidios puebla el catálogo local de subsidios del corredor a partir
// de una planilla CSV (columnas nombre_subsidio, valor_porcentual y
// opcionalmente id_normativa).
//
// Uso: go run ./cmd/seed_subsidios [ruta/subsidios.csv]
// Por defecto busca subsidios.csv en el directorio actual. El archivo sqlite
// destino se resuelve con la misma configuración que la API (CORREDOR_ID,
// SUBSIDY_DATA_DIR).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tu-usuario/tribunsys/internal/application/subsidy"
	"github.com/tu-usuario/tribunsys/internal/infrastructure/sqlite"
	"github.com/tu-usuario/tribunsys/pkg/config"
	"github.com/tu-usuario/tribunsys/pkg/logger"
	"github.com/tu-usuario/tribunsys/pkg/tabular"
)

func main() {
	csvPath := "subsidios.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	table, err := tabular.ReadCSV(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Subsidy.DBPath()), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio de datos: %v\n", err)
		os.Exit(1)
	}
	store, err := sqlite.Open(cfg.Subsidy.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir almacén local: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// Sin réplica remota ni auditoría: el seed corre fuera de línea
	ledger := subsidy.NewLedger(store, nil, nil, cfg.Subsidy.BrokerID, logger.Nop())

	stats, err := ledger.ImportFromTable(context.Background(), "seed", table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar catálogo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Importado %s en %s: %d filas, %d agregados, %d actualizados\n",
		csvPath, cfg.Subsidy.DBPath(), stats.Rows, stats.Added, stats.Updated)
	for _, e := range stats.Errors {
		fmt.Fprintln(os.Stderr, e)
	}
}
