// Command token emite tokens JWT para pruebas locales y soporte. En producción
// los tokens los emite el proveedor de identidad con el mismo secreto.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/config"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/jwt"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		role    string
		minutes int
	)
	cmd := &cobra.Command{
		Use:          "token <usuario>",
		Short:        "Emite un token JWT para la API de entregas",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !entity.ValidRole(role) {
				return fmt.Errorf("rol inválido %q: use %s o %s", role, entity.RoleOperador, entity.RoleConsulta)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if minutes <= 0 {
				minutes = cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, args[0], role, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", entity.RoleConsulta, "rol del token (operador | consulta)")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	return cmd
}
