// Package archive persists per-team weekly metrics to Postgres. The archive
// is optional: runs without DATABASE_URL skip it entirely, and archive
// failures never fail a report — the snapshot on disk is the authoritative
// output.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridironlab/ffreport/internal/config"
	"github.com/gridironlab/ffreport/internal/model"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS team_week_metrics (
    platform            text        NOT NULL,
    league_id           text        NOT NULL,
    season              int         NOT NULL,
    week                int         NOT NULL,
    team_id             text        NOT NULL,
    team_name           text        NOT NULL,
    points              numeric     NOT NULL,
    bench_points        numeric     NOT NULL,
    coaching_efficiency numeric     NOT NULL,
    efficiency_dq       boolean     NOT NULL,
    optimal_points      numeric     NOT NULL,
    luck                numeric     NOT NULL,
    bad_boy_points      int         NOT NULL,
    num_offenders       int         NOT NULL,
    total_weight        numeric     NOT NULL,
    tabbu               numeric     NOT NULL,
    total_covid_risk    int         NOT NULL,
    wins                int         NOT NULL,
    losses              int         NOT NULL,
    ties                int         NOT NULL,
    updated_at          timestamptz NOT NULL DEFAULT now(),
    PRIMARY KEY (platform, league_id, season, week, team_id)
)`

// New creates and validates a connection pool, ensuring the metrics table
// exists.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure metrics table: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// ArchiveLeague upserts one row per team for the league's report week.
func (p *Pool) ArchiveLeague(ctx context.Context, league *model.League) error {
	for _, team := range league.Teams {
		_, err := p.Exec(ctx, "upsert_team_week",
			league.Platform, league.LeagueID, league.Season, league.Week,
			team.ID, team.Name, team.Points, team.BenchPoints,
			team.CoachingEfficiency, team.EfficiencyDQ, team.OptimalPoints,
			team.Luck, team.BadBoyPoints, team.NumOffenders,
			team.TotalWeight, team.TABBU, team.TotalCovidRisk,
			team.Record.Wins, team.Record.Losses, team.Record.Ties)
		if err != nil {
			return fmt.Errorf("archive team %s week %d: %w", team.ID, league.Week, err)
		}
	}
	return nil
}

// registerPreparedStatements registers all statements the archive uses.
// Prepared statements eliminate parse overhead on repeated upserts.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		"health_check": "SELECT 1",

		"upsert_team_week": `
			INSERT INTO team_week_metrics (
				platform, league_id, season, week, team_id, team_name,
				points, bench_points, coaching_efficiency, efficiency_dq,
				optimal_points, luck, bad_boy_points, num_offenders,
				total_weight, tabbu, total_covid_risk, wins, losses, ties
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
			)
			ON CONFLICT (platform, league_id, season, week, team_id) DO UPDATE SET
				team_name = EXCLUDED.team_name,
				points = EXCLUDED.points,
				bench_points = EXCLUDED.bench_points,
				coaching_efficiency = EXCLUDED.coaching_efficiency,
				efficiency_dq = EXCLUDED.efficiency_dq,
				optimal_points = EXCLUDED.optimal_points,
				luck = EXCLUDED.luck,
				bad_boy_points = EXCLUDED.bad_boy_points,
				num_offenders = EXCLUDED.num_offenders,
				total_weight = EXCLUDED.total_weight,
				tabbu = EXCLUDED.tabbu,
				total_covid_risk = EXCLUDED.total_covid_risk,
				wins = EXCLUDED.wins,
				losses = EXCLUDED.losses,
				ties = EXCLUDED.ties,
				updated_at = now()`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
