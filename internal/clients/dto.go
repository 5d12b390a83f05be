package clients

import (
	"time"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
)

type CreateInput struct {
	RUT     string
	Name    string
	Email   *string
	Phone   *string
	Address *string
}

// Patch lists editable client fields. An empty Email clears the column.
type Patch struct {
	RUT     *string
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (p Patch) Empty() bool {
	return p.RUT == nil && p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil
}

// ListFilters are case-insensitive substring matches.
type ListFilters struct {
	Name  string
	RUT   string
	Email string
}

// ClientDTO is the API shape of a client.
type ClientDTO struct {
	ID         int64     `json:"id_cliente"`
	RUT        string    `json:"rut"`
	Name       string    `json:"nombre"`
	Email      *string   `json:"correo"`
	Phone      *string   `json:"telefono"`
	Address    *string   `json:"direccion"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Quotations *int64    `json:"total_cotizaciones,omitempty"`
}

// RUTCheck is the result of validating a RUT without storing it.
type RUTCheck struct {
	Valid     bool    `json:"valido"`
	Formatted *string `json:"rut_formateado"`
	Message   string  `json:"mensaje"`
}

func toDTO(c models.Client) ClientDTO {
	return ClientDTO{
		ID:        c.ID,
		RUT:       c.RUT,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
