/*
Package config manages configuration parsing and validation for hotify.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   YAML    |           |   HCL   |
	| Parser    |           | Parser  |
	+-----------+           +---------+

🎯 Purpose:
- Loads the hot folder configuration file
- Validates environment definitions before any watch is registered
- Normalizes single-command and pipeline triggers into one Trigger type

🔄 Flow:
1. Reads configuration from file
2. Parses format-specific syntax (YAML or HCL)
3. Validates configuration values
4. Provides the validated config to the watcher registrar

⚡ Key Responsibilities:
- Configuration parsing
- Schema validation (required keys, unique environment names)
- Trigger normalization (scalar vs pipeline)
- Format abstraction

🤝 Interfaces:
- Parser: Format-specific parsing
- Config / Environment / Trigger: Type-safe config access

Configuration errors are the only errors in hotify that are fatal: they are
reported at startup before any folder is watched. Everything downstream is
contained per file or per trigger.
*/
package config
