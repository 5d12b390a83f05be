package models

import "time"

// Client is a customer identified by a unique RUT.
type Client struct {
	ID        int64     `gorm:"column:id_cliente;primaryKey;autoIncrement"`
	RUT       string    `gorm:"column:rut;not null"`
	Name      string    `gorm:"column:nombre;not null"`
	Email     *string   `gorm:"column:correo"`
	Phone     *string   `gorm:"column:telefono"`
	Address   *string   `gorm:"column:direccion"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Client) TableName() string { return "clientes" }
