package persistence

import (
	"database/sql"
	"errors"
	"os"

	"github.com/go-sql-driver/mysql"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_ARGS=root:root@(127.0.0.1:3306)/orderhub?charset=utf8mb4&parseTime=True&loc=Local
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driverType := os.Getenv("DATABASE_DRIVER")
	if driverType == "" {
		driverType = "mysql"
	}
	driverArgs := os.Getenv("DATABASE_ARGS")
	if driverArgs == "" {
		return nil, errors.New("environment variable DATABASE_ARGS is required")
	}
	return &DatabaseConfig{DriverType: driverType, DriverArgs: driverArgs}, nil
}

// PrepareMysqlDatabase create the database named in driverArgs when it does not exist yet.
func PrepareMysqlDatabase(driverArgs string) error {
	dsn, err := mysql.ParseDSN(driverArgs)
	if err != nil {
		return err
	}
	databaseName := dsn.DBName
	if databaseName == "" {
		return errors.New("database name is absent in DATABASE_ARGS")
	}
	dsn.DBName = ""

	conn, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` CHARACTER SET utf8mb4")
	return err
}
