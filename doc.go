// Project Structure Overview
/*
dashboard-insights/
├── cmd/
│   ├── server/          HTTP API
│   └── forecast/        one-shot or cron-scheduled forecast runs
├── internal/
│   ├── config/          environment configuration
│   ├── models/          products, sales, recommendations, forecast runs
│   ├── database/        connection, migrations, demo seed
│   ├── repository/      sales aggregates
│   ├── services/        metrics, options, selection, priority,
│   │                    recommendations, forecasts
│   ├── llm/             text generation client and output decoding
│   ├── cache/           rotation counters (memory, redis)
│   ├── handlers/
│   ├── middleware/
│   ├── i18n/
│   ├── logger/
│   ├── utils/
│   └── router/
└── go.mod
*/

// Package dashboardinsights produces pricing and promotion recommendations
// and sales forecasts for the e-commerce dashboard. The binaries live under
// cmd/.
package dashboardinsights
