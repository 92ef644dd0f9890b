// Package e2e runs the full pipeline over a generated corpus of text files.
package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is one file of the generated corpus.
type Document struct {
	Name    string
	Title   string
	Content string
}

// QueryTestCase is a topic query and the file that must appear in its results.
type QueryTestCase struct {
	Query        string
	ExpectedName string
}

// Corpus holds the generated files and their query test cases.
type Corpus struct {
	Documents []Document
	TestCases []QueryTestCase
}

type topic struct {
	title   string
	phrase  string
	content string
}

var topics = []topic{
	{"Python Guide", "Python programming", "Python is a high-level programming language. Python programming is used for web development and data science."},
	{"Kubernetes Docs", "Kubernetes orchestration", "Kubernetes is an open-source container orchestration platform. Kubernetes orchestration automates deployment and scaling."},
	{"React Tutorial", "React hooks", "React is a JavaScript library. React hooks and components enable building user interfaces."},
	{"Go Language", "golang concurrency", "Go is a statically typed language. In golang concurrency is achieved with goroutines and channels."},
	{"PostgreSQL Manual", "PostgreSQL relational", "PostgreSQL is an advanced relational database. PostgreSQL relational storage supports JSON and full-text search."},
	{"Docker Handbook", "Docker images", "Docker enables building and shipping applications. Docker images are portable across environments."},
	{"Machine Learning", "machine learning", "Machine learning is a subset of AI. Machine learning algorithms learn patterns from data."},
	{"Neural Networks", "neural network", "Neural networks are inspired by the brain. A neural network with many layers powers modern AI."},
	{"GraphQL Overview", "GraphQL schema", "GraphQL is a query language for APIs. A GraphQL schema lets clients request exactly what they need."},
	{"TypeScript Handbook", "TypeScript types", "TypeScript adds static types to JavaScript. TypeScript types catch errors at compile time."},
	{"Redis Cache", "Redis sessions", "Redis is an in-memory data store. Redis sessions and caching are common uses."},
	{"AWS Lambda", "Lambda serverless", "AWS Lambda runs code without servers. Lambda serverless functions scale automatically."},
	{"Terraform IaC", "Terraform modules", "Terraform manages cloud infrastructure. Terraform modules are declarative and reusable."},
	{"Prometheus Metrics", "Prometheus monitoring", "Prometheus is a monitoring system. Prometheus monitoring stores time-series metrics."},
	{"gRPC Overview", "gRPC protobuf", "gRPC is a high-performance RPC framework. gRPC protobuf messages travel over HTTP/2."},
	{"OAuth Guide", "OAuth authorization", "OAuth is an authorization framework. OAuth authorization enables secure delegated access."},
	{"Git Workflow", "Git commits", "Git is a distributed version control system. Git commits track changes in source code."},
	{"Kafka Streams", "Kafka streaming", "Apache Kafka is a distributed event platform. Kafka streaming handles high throughput."},
	{"Nginx Config", "Nginx proxy", "Nginx is a web server and reverse proxy. An Nginx proxy balances load and serves static files."},
	{"Cryptography Basics", "cryptography ciphers", "Cryptography secures data. Cryptography ciphers use keys and algorithms."},
	{"Event Sourcing", "event sourcing", "Event sourcing stores state as events. Event sourcing pairs well with separate read models."},
	{"Agile Scrum", "Scrum sprint", "Agile is an iterative approach. A Scrum sprint typically lasts two weeks."},
	{"Unit Testing", "unit mocks", "Unit tests verify small units of code. Unit mocks isolate dependencies."},
	{"Semantic Search", "semantic embeddings", "Semantic search uses meaning not just keywords. Semantic embeddings capture context."},
	{"Chunking Strategy", "chunking overlap", "Chunking splits long documents. Chunking overlap preserves context."},
	{"WebSocket Protocol", "WebSocket realtime", "WebSockets enable bidirectional communication. WebSocket realtime updates power chat."},
	{"Rate Limiting", "rate throttling", "Rate limiting protects APIs. Rate throttling can be per-user or global."},
	{"Circuit Breaker", "circuit breaker", "A circuit breaker stops cascading failures. The circuit breaker pattern fails fast."},
	{"Password Hashing", "bcrypt hashing", "Passwords must be hashed. Bcrypt hashing resists rainbow tables."},
	{"Graceful Shutdown", "SIGTERM draining", "Graceful shutdown drains connections. SIGTERM draining lets servers finish requests."},
}

// BuildCorpus returns n documents. Topics repeat once n exceeds their number, so later
// documents are exact content twins of earlier ones.
func BuildCorpus(n int) *Corpus {
	c := &Corpus{}
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		title := t.title
		if i >= len(topics) {
			title = fmt.Sprintf("%s %d", t.title, i/len(topics)+1)
		}
		c.Documents = append(c.Documents, Document{
			Name:    strings.ReplaceAll(title, " ", "_") + ".txt",
			Title:   title,
			Content: t.content,
		})
		if i < len(topics) {
			c.TestCases = append(c.TestCases, QueryTestCase{Query: t.phrase, ExpectedName: c.Documents[i].Name})
		}
	}
	return c
}

// Twin returns the name of the earlier document with the same content as name, if any.
func (c *Corpus) Twin(name string) (string, bool) {
	for i, d := range c.Documents {
		if d.Name == name && i >= len(topics) {
			return c.Documents[i%len(topics)].Name, true
		}
	}
	return "", false
}

// Write creates one file per document in dir.
func (c *Corpus) Write(dir string) error {
	for _, d := range c.Documents {
		if err := os.WriteFile(filepath.Join(dir, d.Name), []byte(d.Content), 0644); err != nil {
			return err
		}
	}
	return nil
}

func containsPhrase(d Document, phrase string) bool {
	return strings.Contains(strings.ToLower(d.Content), strings.ToLower(phrase))
}
