// main.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ddproperty/ddproperty-api/internal/database"
	"github.com/ddproperty/ddproperty-api/internal/testdb"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var hostPort string
	flag.StringVar(&hostPort, "p", "", "host port to publish MariaDB on")
	var migrate bool
	flag.BoolVar(&migrate, "migrate", true, "create the schema once the database is up")
	flag.Parse()

	usage := `
Run a MariaDB testcontainer for local development with the DB_* variables
from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-p HOST_PORT] [-migrate=false]

example
  testcontainers -f ./.env -p 3306
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx := context.Background()
	if !testdb.DockerAvailable(ctx) {
		log.Fatalf("Docker is not available\n")
	}

	db, err := testdb.StartMariaDB(ctx, testdb.MariaDBOptions{HostPort: hostPort})
	if err != nil {
		log.Fatalf("Failed to start MariaDB: %v\n", err)
	}
	log.Printf("MariaDB listening on %s:%s (database %s, user %s)\n",
		db.Host, db.Port, db.Options.Database, db.Options.User)

	if migrate {
		conn, err := database.Connect(db.Config(), zap.NewNop())
		if err != nil {
			db.Terminate(ctx)
			log.Fatalf("Failed to connect: %v\n", err)
		}
		if err := database.AutoMigrate(conn); err != nil {
			db.Terminate(ctx)
			log.Fatalf("Failed to migrate: %v\n", err)
		}
		database.Close(conn)
		log.Printf("Schema created\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating MariaDB...\n", sig)
	if err := db.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate MariaDB: %v\n", err)
	}
}
