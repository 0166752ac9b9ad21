package storage

import "time"

// Account represents a storage account record. Connection strings are
// managed out of band; this service only reads assignments.
type Account struct {
	ID               string
	Name             string
	ConnectionString string
	Location         string
	IsActive         bool
	CreatedAt        time.Time
}

// Container is a named bucket scoped to a storage account.
type Container struct {
	ID        string
	Name      string
	AccountID string
	CreatedAt time.Time
}

// ContainerInfo joins a container with its storage account for
// assignment dropdowns.
type ContainerInfo struct {
	ContainerID string `json:"container_id"`
	Name        string `json:"container_name"`
	AccountID   string `json:"storage_account_id"`
	AccountName string `json:"storage_account_name"`
	Location    string `json:"location"`
	DisplayName string `json:"display_name"`
}
