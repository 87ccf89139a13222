// Package logger provides structured logging for hostproc using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("invoker")
//	log.Debug("execution finished", logger.Fields(logger.FieldStatus, 0))
package logger
