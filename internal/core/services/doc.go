// Package services implements the core retrieval pipeline behind the
// driving ports: index building, retrieval, answer composition and
// batch orchestration.
//
// Services depend only on domain types and driven ports. All external
// latency (embedding, generation, storage) sits behind those ports.
package services
