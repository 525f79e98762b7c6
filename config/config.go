package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"phishtrack/pkg/mq"
)

type Config struct {
	MetadataDB     MySQL         `json:"metadata_db"`
	EventDB        ClickHouse    `json:"event_db"`
	FileStore      GoogleDrive   `json:"file_store"`
	AuditStore     Elasticsearch `json:"audit_store"`
	MQProducer     mq.ProducerConfig `json:"mq_producer"`
	MQConsumer     mq.ConsumerConfig `json:"mq_consumer"`
	Brevo          Brevo         `json:"brevo"`
	InternalSender string        `json:"internal_sender"`
	AllowedOrigins []string      `json:"allowed_origins"`
}

type MySQL struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
}

func (mysql *MySQL) ToDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", mysql.Username, mysql.Password, mysql.Host, mysql.Port, mysql.Database)
}

type ClickHouse struct {
	Database               string   `json:"database"`
	Username               string   `json:"username"`
	Password               string   `json:"password"`
	Addr                   []string `json:"addr"`
	Debug                  bool     `json:"debug"`
	MaxOpenConns           int      `json:"max_open_conns"`
	MaxIdleConns           int      `json:"max_idle_conns"`
	DialTimeoutSeconds     int      `json:"dial_timeout_seconds"`
	ConnMaxLifetimeSeconds int      `json:"conn_max_lifetime_seconds"`
}

type GoogleDrive struct {
	AdminEmail           string                 `json:"admin_email"`
	BaseFolderID         string                 `json:"base_folder_id"`
	GoogleServiceAccount map[string]interface{} `json:"google_service_account"`
}

type Elasticsearch struct {
	Addresses []string `json:"addresses"`
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	Index     string   `json:"index"`
}

type Brevo struct {
	APIKey string `json:"api_key"`
}

func NewConfig() *Config {
	return &Config{
		MetadataDB: MySQL{
			Username: "",
			Password: "",
			Host:     "127.0.0.1",
			Port:     3306,
			Database: "phishtrack_db",
		},
		EventDB: ClickHouse{
			Database:               "phishtrack_events",
			Addr:                   []string{"127.0.0.1:9000"},
			Debug:                  false,
			MaxOpenConns:           10,
			MaxIdleConns:           10,
			DialTimeoutSeconds:     10,
			ConnMaxLifetimeSeconds: 3600,
		},
		FileStore: GoogleDrive{},
		AuditStore: Elasticsearch{
			Addresses: []string{"http://127.0.0.1:9200"},
			Index:     "phishtrack-audit",
		},
		MQProducer: mq.ProducerConfig{
			Brokers: []string{"127.0.0.1:9092"},
			Topics: map[uint32]string{
				uint32(mq.PayloadNotifyImportTask): "notify_import_task",
			},
		},
		MQConsumer: mq.ConsumerConfig{
			Brokers:       []string{"127.0.0.1:9092"},
			Topic:         "notify_import_task",
			ConsumerGroup: "phishtrack-import-worker",
			InitialOffset: "oldest",
		},
		Brevo:          Brevo{},
		InternalSender: "",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

func (c *Config) Load(ctx context.Context, path string) error {
	if path == "" {
		log.Ctx(ctx).Warn().Msgf("empty config file")
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Ctx(ctx).Warn().Msgf("config file does not exist, file path: %s", path)
			return nil
		}
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			log.Ctx(ctx).Error().Msgf("config file close failed, file path: %s", path)
		}
	}(f)

	p := json.NewDecoder(f)
	if err := p.Decode(&c); err != nil {
		return err
	}

	return nil
}
