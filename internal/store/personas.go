package store

import (
	"database/sql"
	"fmt"
)

func (s *SQLiteStore) CreatePersonaConfig(name string, roleSettings, strategy map[string]any, outlineID *int64) (*PersonaConfig, error) {
	roleJSON, err := marshalJSON(roleSettings)
	if err != nil {
		return nil, err
	}
	strategyJSON, err := marshalJSON(strategy)
	if err != nil {
		return nil, err
	}

	res, err := s.db.Exec("INSERT INTO persona_configs (name, role_settings, strategy, outline_id) VALUES (?, ?, ?, ?)",
		name, roleJSON, strategyJSON, outlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert persona config: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetPersonaConfig(id)
}

func (s *SQLiteStore) GetPersonaConfig(configID int64) (*PersonaConfig, error) {
	row := s.db.QueryRow("SELECT id, name, role_settings, strategy, outline_id FROM persona_configs WHERE id = ?", configID)
	return scanPersonaConfig(row)
}

// GetPersonaConfigByOutline returns the persona bound to an outline, if any.
// At most one can exist per outline (unique constraint).
func (s *SQLiteStore) GetPersonaConfigByOutline(outlineID int64) (*PersonaConfig, error) {
	row := s.db.QueryRow("SELECT id, name, role_settings, strategy, outline_id FROM persona_configs WHERE outline_id = ?", outlineID)
	return scanPersonaConfig(row)
}

func scanPersonaConfig(row *sql.Row) (*PersonaConfig, error) {
	var cfg PersonaConfig
	var roleJSON, strategyJSON string
	var outlineID sql.NullInt64
	err := row.Scan(&cfg.ID, &cfg.Name, &roleJSON, &strategyJSON, &outlineID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to scan persona config: %w", err)
	}
	cfg.RoleSettings = unmarshalMap(roleJSON)
	cfg.Strategy = unmarshalMap(strategyJSON)
	if outlineID.Valid {
		cfg.OutlineID = &outlineID.Int64
	}
	return &cfg, nil
}

func (s *SQLiteStore) ListPersonaConfigs(outlineID *int64, skip, limit int) ([]PersonaConfig, error) {
	query := "SELECT id, name, role_settings, strategy, outline_id FROM persona_configs"
	args := []any{}
	if outlineID != nil {
		query += " WHERE outline_id = ?"
		args = append(args, *outlineID)
	}
	query += " ORDER BY id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query persona configs: %w", err)
	}
	defer rows.Close()

	configs := []PersonaConfig{}
	for rows.Next() {
		var cfg PersonaConfig
		var roleJSON, strategyJSON string
		var oid sql.NullInt64
		if err := rows.Scan(&cfg.ID, &cfg.Name, &roleJSON, &strategyJSON, &oid); err != nil {
			return nil, fmt.Errorf("failed to scan persona config row: %w", err)
		}
		cfg.RoleSettings = unmarshalMap(roleJSON)
		cfg.Strategy = unmarshalMap(strategyJSON)
		if oid.Valid {
			cfg.OutlineID = &oid.Int64
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// UpdatePersonaConfig replaces all mutable fields. Returns (nil, nil) if the
// config does not exist.
func (s *SQLiteStore) UpdatePersonaConfig(configID int64, name string, roleSettings, strategy map[string]any, outlineID *int64) (*PersonaConfig, error) {
	roleJSON, err := marshalJSON(roleSettings)
	if err != nil {
		return nil, err
	}
	strategyJSON, err := marshalJSON(strategy)
	if err != nil {
		return nil, err
	}

	res, err := s.db.Exec("UPDATE persona_configs SET name = ?, role_settings = ?, strategy = ?, outline_id = ? WHERE id = ?",
		name, roleJSON, strategyJSON, outlineID, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to update persona config: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, nil // Not found
	}
	return s.GetPersonaConfig(configID)
}

func (s *SQLiteStore) DeletePersonaConfig(configID int64) (bool, error) {
	res, err := s.db.Exec("DELETE FROM persona_configs WHERE id = ?", configID)
	if err != nil {
		return false, fmt.Errorf("failed to delete persona config: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}
