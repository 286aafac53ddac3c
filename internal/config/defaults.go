package config

import "time"

const (
	defaultPort     = 8080
	defaultLogLevel = "info"
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultRedis = Redis{
	Addr: "127.0.0.1:6379",
}

var defaultKafka = Kafka{
	GroupID: "parcel-delivery-notifications",
}

var defaultQueue = Queue{
	Driver:        DriverRedis,
	Prefix:        "parcel",
	MaxAttempts:   3,
	Backoff:       time.Second,
	MaxBackoff:    30 * time.Second,
	Concurrency:   1,
	StallInterval: 30 * time.Second,
	StallTimeout:  5 * time.Minute,
}

var defaultMail = Mail{
	Port: 587,
	From: "Parcel Delivery <noreply@parcel-delivery.local>",
}

var defaultDelivery = Delivery{
	Timezone:           "UTC",
	WindowStart:        8,
	WindowEnd:          18,
	DailyRetrieveLimit: 5,
	OperationTimeout:   3 * time.Second,
}

// DefaultPort returns the default port.
func DefaultPort() int { return defaultPort }

// DefaultDB returns the default database settings.
func DefaultDB() DB { return defaultDB }

// DefaultRedis returns the default redis settings.
func DefaultRedis() Redis { return defaultRedis }

// DefaultKafka returns the default kafka settings.
func DefaultKafka() Kafka { return defaultKafka }

// DefaultQueue returns the default queue settings.
func DefaultQueue() Queue { return defaultQueue }

// DefaultMail returns the default mail settings.
func DefaultMail() Mail { return defaultMail }

// DefaultDelivery returns the default delivery settings.
func DefaultDelivery() Delivery { return defaultDelivery }
