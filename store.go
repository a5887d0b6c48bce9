package ksn

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/theletterandrew/ksn-project/profile"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS ksn_points (
	watershed_id INTEGER NOT NULL,
	x REAL NOT NULL,
	y REAL NOT NULL,
	elev REAL,
	slope REAL,
	area_km2 REAL,
	ksn REAL
);
CREATE TABLE IF NOT EXISTS watershed_stats (
	watershed_id INTEGER PRIMARY KEY,
	n INTEGER,
	ksn_mean REAL,
	ksn_std REAL,
	theta_fit REAL,
	ks_fit REAL
);`

// writeKsnStore persists the full ksn point set and per-watershed
// statistics to a SQLite file for downstream querying.
func writeKsnStore(fp string, results []*profile.Result) error {
	db, err := sql.Open("sqlite", fp)
	if err != nil {
		return fmt.Errorf("writeKsnStore: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(storeSchema); err != nil {
		return fmt.Errorf("writeKsnStore: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("writeKsnStore: %w", err)
	}
	ins, err := tx.Prepare(`INSERT INTO ksn_points (watershed_id,x,y,elev,slope,area_km2,ksn) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("writeKsnStore: %w", err)
	}
	defer ins.Close()
	for _, res := range results {
		if res == nil || res.Empty {
			continue
		}
		for _, pt := range res.Points {
			if _, err := ins.Exec(res.WatershedID, pt.X, pt.Y, pt.Elev, pt.Slope, pt.AreaKm2, pt.Ksn); err != nil {
				tx.Rollback()
				return fmt.Errorf("writeKsnStore: %w", err)
			}
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO watershed_stats (watershed_id,n,ksn_mean,ksn_std,theta_fit,ks_fit) VALUES (?,?,?,?,?,?)`,
			res.WatershedID, res.Stats.N, res.Stats.KsnMean, res.Stats.KsnStd, res.Stats.ThetaFit, res.Stats.KsFit); err != nil {
			tx.Rollback()
			return fmt.Errorf("writeKsnStore: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("writeKsnStore: %w", err)
	}
	return nil
}
