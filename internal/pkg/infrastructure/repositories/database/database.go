package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//ErrNotFound is returned by lookups when the requested entity does not exist
var ErrNotFound = errors.New("not found")

//Datastore is the read-only query surface consumed by the API layer. It is an interface
//so that handlers can be tested against a mock instead of a real database.
type Datastore interface {
	GetProperties() ([]models.Property, error)
	GetPropertyByID(propertyID uint) (*models.Property, error)
	GetPropertyNetworks(propertyID uint) ([]models.Network, error)
	GetPropertyHourlyOutages(propertyID uint, since time.Time) ([]models.PropertyHourlyOutage, error)
	GetPropertyShelves(propertyID uint) ([]PropertyShelfInfo, error)
	GetPropertyRouters(propertyID uint) ([]PropertyRouterInfo, error)
	GetNetworkByID(networkID int64) (*models.Network, error)
	GetNetworkHourlyOutages(networkID int64, since time.Time) ([]models.NetworkHourlyOutage, error)
	GetStats() (*Stats, error)
	SearchProperties(query string) ([]models.Property, error)
	GetXponShelves() ([]models.XponShelf, error)
	GetXponShelfByID(shelfID uint) (*models.XponShelf, error)
	GetRouters() ([]models.Router7x50, error)
	GetRouterByID(routerID uint) (*models.Router7x50, error)
	GetOngoingOutages() ([]OngoingOutageInfo, error)
	CountOngoingOutages() (int64, error)
	GetPropertyWideOutages(since time.Time, thresholdPercent float64) ([]PropertyWideOutage, error)
}

//ConnectorFunc is used to inject a database connection method into NewDatabase
type ConnectorFunc func() (*gorm.DB, error)

//NewSQLiteConnector opens a connection to an embedded sqlite database at the given DSN.
//Tests pass an in-memory DSN, production passes a file path.
func NewSQLiteConnector(dsn string) ConnectorFunc {
	return func() (*gorm.DB, error) {
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})

		if err == nil {
			db.Exec("PRAGMA foreign_keys = ON")
		}

		return db, err
	}
}

//NewPostgreSQLConnector opens a connection to a postgresql database for shared deployments
func NewPostgreSQLConnector(host, username, dbName, password, sslMode string, log logging.Logger) ConnectorFunc {
	dbURI := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=%s password=%s", host, username, dbName, sslMode, password)

	return func() (*gorm.DB, error) {
		log.Infof("Connecting to database host %s ...", host)
		db, err := gorm.Open(postgres.Open(dbURI), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	}
}

//Database wraps the underlying gorm handle. The pipeline gets transactional access through
//Transaction, the API layer reads through the Datastore interface.
type Database struct {
	impl *gorm.DB
	log  logging.Logger
}

//NewDatabase initializes a new connection, migrates the schema and returns the wrapper
func NewDatabase(connect ConnectorFunc, log logging.Logger) (*Database, error) {
	impl, err := connect()
	if err != nil {
		return nil, err
	}

	err = impl.AutoMigrate(
		&models.Property{},
		&models.Network{},
		&models.XponShelf{},
		&models.Router7x50{},
		&models.PropertyXponShelf{},
		&models.Property7x50{},
		&models.Outage{},
		&models.NetworkHourlyOutage{},
		&models.PropertyHourlyOutage{},
		&models.OngoingOutage{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return &Database{impl: impl, log: log}, nil
}

//Transaction runs fn inside a single database transaction. The whole of one input file's
//processing goes through here so a crash mid-run can never leave rollups inconsistent
//with the raw facts.
func (db *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return db.impl.Transaction(fn)
}

func (db *Database) takeByID(dest interface{}, query string, args ...interface{}) error {
	result := db.impl.Where(query, args...).Limit(1).Find(dest)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
