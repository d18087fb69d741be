// mariadb.go
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

package testdb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ddproperty/ddproperty-api/internal/config"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MariaDBOptions configures the container. Empty fields take the DB_* values
// from the environment, then the defaults below.
type MariaDBOptions struct {
	Image        string
	Database     string
	User         string
	Password     string
	RootPassword string
	// HostPort pins the published port; empty picks a free one.
	HostPort string
}

// MariaDB is a running database container.
type MariaDB struct {
	Container testcontainers.Container
	Host      string
	Port      string
	Options   MariaDBOptions
}

func (o *MariaDBOptions) defaults() {
	if o.Image == "" {
		o.Image = envOr("DB_IMAGE", "mariadb:11")
	}
	if o.Database == "" {
		o.Database = envOr("DB_DATABASE", "ddproperty")
	}
	if o.User == "" {
		o.User = envOr("DB_USER", "ddproperty")
	}
	if o.Password == "" {
		o.Password = envOr("DB_PASSWORD", "ddproperty")
	}
	if o.RootPassword == "" {
		o.RootPassword = envOr("DB_ROOT_PASSWORD", "rootpass")
	}
}

// DockerAvailable reports whether a docker daemon answers.
func DockerAvailable(ctx context.Context) bool {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err = cli.Ping(ctx)
	return err == nil
}

// StartMariaDB starts a MariaDB container and waits for it to accept connections.
func StartMariaDB(ctx context.Context, opts MariaDBOptions) (*MariaDB, error) {
	opts.defaults()

	tcpPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		return nil, err
	}

	hostConfigModifier := func(hostConfig *container.HostConfig) {
		// data is thrown away with the container
		hostConfig.Tmpfs = map[string]string{"/var/lib/mysql": "rw"}
		if opts.HostPort != "" {
			hostConfig.PortBindings = nat.PortMap{
				tcpPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: opts.HostPort}},
			}
		}
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.Image,
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": opts.RootPassword,
				"MYSQL_DATABASE":      opts.Database,
				"MYSQL_USER":          opts.User,
				"MYSQL_PASSWORD":      opts.Password,
			},
			HostConfigModifier: hostConfigModifier,
			WaitingFor: wait.ForAll(
				wait.ForLog("ready for connections").WithOccurrence(2),
				wait.ForListeningPort(tcpPort),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MariaDB: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := c.MappedPort(ctx, tcpPort)
	if err != nil {
		c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &MariaDB{Container: c, Host: host, Port: port.Port(), Options: opts}, nil
}

// Config returns a service configuration pointing at the container.
func (m *MariaDB) Config() *config.Config {
	return &config.Config{
		DBType:            "mariadb",
		DBHost:            m.Host,
		DBPort:            m.Port,
		DBDatabase:        m.Options.Database,
		DBUser:            m.Options.User,
		DBPassword:        m.Options.Password,
		DBConnectionLimit: 5,
		DBLogLevel:        "silent",
		JWTSecret:         "testcontainers",
		MediaURLPrefix:    "/images",
	}
}

// Terminate stops and removes the container.
func (m *MariaDB) Terminate(ctx context.Context) error {
	if m == nil || m.Container == nil {
		return nil
	}
	return m.Container.Terminate(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
