package entity

// Roles válidos en el token.
const (
	RoleOperador = "operador" // consulta y ejecuta acciones
	RoleConsulta = "consulta" // solo lectura
)

// ValidRole indica si el rol es uno de los conocidos.
func ValidRole(role string) bool {
	return role == RoleOperador || role == RoleConsulta
}
