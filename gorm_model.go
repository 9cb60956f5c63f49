package cvault

// gormVaultEntry is the internal GORM model for entry rows.
// This struct is used for database operations only.
type gormVaultEntry struct {
	UUID         string `gorm:"primaryKey;size:36;column:uuid"`
	ServiceBlob  []byte `gorm:"column:service_blob;not null"`
	UsernameBlob []byte `gorm:"column:username_blob;not null"`
	PasswordBlob []byte `gorm:"column:password_blob;not null"`
	NotesBlob    []byte `gorm:"column:notes_blob"`
	CreatedAt    int64  `gorm:"column:created_at;not null"`
	UpdatedAt    int64  `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for the GORM model
func (gormVaultEntry) TableName() string {
	return "" // Will be set dynamically via store.entryTableName
}

// gormVaultConfig is the internal GORM model for config rows
type gormVaultConfig struct {
	Key   string `gorm:"primaryKey;size:64;column:config_key"`
	Value []byte `gorm:"column:config_value;not null"`
}

// TableName returns the table name for the GORM model
func (gormVaultConfig) TableName() string {
	return "" // Will be set dynamically via store.configTableName
}

// toVaultEntry converts a GORM row to the internal representation
func (g *gormVaultEntry) toVaultEntry() *VaultEntry {
	return &VaultEntry{
		UUID:         g.UUID,
		ServiceBlob:  g.ServiceBlob,
		UsernameBlob: g.UsernameBlob,
		PasswordBlob: g.PasswordBlob,
		NotesBlob:    g.NotesBlob,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// fromVaultEntry creates a GORM row from the internal representation
func fromVaultEntry(e *VaultEntry) *gormVaultEntry {
	return &gormVaultEntry{
		UUID:         e.UUID,
		ServiceBlob:  e.ServiceBlob,
		UsernameBlob: e.UsernameBlob,
		PasswordBlob: e.PasswordBlob,
		NotesBlob:    e.NotesBlob,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
