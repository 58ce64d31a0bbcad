package config

// CredentialConfig locates the credential slot database
type CredentialConfig struct {
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty" validate:"required"`
}

// NewDefaultCredentialConfig creates default credential configuration
func NewDefaultCredentialConfig() CredentialConfig {
	return CredentialConfig{
		SQLiteDBPath: DefaultCredentialSQLiteDBPath,
	}
}
