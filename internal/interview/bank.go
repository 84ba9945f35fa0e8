package interview

// DefaultBank returns a copy of the built-in question pools.
func DefaultBank() Bank {
	bank := make(Bank, len(defaultBank))
	for tier, pool := range defaultBank {
		bank[tier] = append([]Template(nil), pool...)
	}
	return bank
}

var defaultBank = Bank{
	DifficultyEasy: {
		{
			Text:        "What is the difference between let, const, and var in JavaScript?",
			IdealAnswer: "var is function scoped and hoisted with undefined. let and const are block scoped and live in the temporal dead zone until declared. const bindings cannot be reassigned, although the referenced object can still be mutated.",
		},
		{
			Text:        "Explain how useState works in React.",
			IdealAnswer: "useState returns the current state value and a setter. Calling the setter schedules a re-render with the new value. Updates based on the previous value should use the functional form, and state is preserved between renders by hook call order.",
		},
		{
			Text:        "What is npm and what does package.json do?",
			IdealAnswer: "npm is the Node package manager and registry client. package.json describes the project: name, version, scripts, dependencies and devDependencies with semver ranges, while the lock file pins exact resolved versions.",
		},
		{
			Text:        "How do you handle environment variables in a React + Vite app?",
			IdealAnswer: "Vite loads .env files per mode and exposes only variables prefixed with VITE_ through import.meta.env at build time. Anything shipped to the browser is public, so secrets must stay on the server.",
		},
	},
	DifficultyMedium: {
		{
			Text:        "Describe how you would design a pagination API in Node/Express and consume it in React.",
			IdealAnswer: "Expose limit plus offset or an opaque cursor, return items with the next cursor and total when cheap, validate and cap the limit, and index the sort key. In React keep page state, fetch on change, show loading and error states, and cancel stale requests.",
		},
		{
			Text:        "What are React keys and why are they important? Provide pitfalls.",
			IdealAnswer: "Keys give list items a stable identity so reconciliation can match elements between renders. Using array indexes or random values breaks identity on reorder, insert or delete, causing lost input state and needless remounts.",
		},
		{
			Text:        "Explain middleware in Express and give a real-world example.",
			IdealAnswer: "Middleware are functions receiving req, res and next that run in registration order and can modify the request, end the response or pass control on. Examples are authentication checks, request logging, body parsing and centralized error handlers with four arguments.",
		},
		{
			Text:        "How would you debounce a search input in React without external libs?",
			IdealAnswer: "Keep the input value in state and start a setTimeout in useEffect when it changes, clearing the previous timer in the cleanup function. Fire the search only when the timer completes and ignore or abort responses for outdated queries.",
		},
	},
	DifficultyHard: {
		{
			Text:        "Design a production-grade authentication flow for a React/Node app (tokens, refresh, cookies, CSRF).",
			IdealAnswer: "Use short-lived access tokens and rotating refresh tokens stored in httpOnly, Secure, SameSite cookies. Detect refresh token reuse and revoke the family, protect state-changing requests with CSRF tokens or SameSite strict, hash passwords with bcrypt or argon2 and rate limit login.",
		},
		{
			Text:        "How would you scale a chat service (WebSockets, backpressure, horizontal scaling)?",
			IdealAnswer: "Run stateless WebSocket gateways behind a load balancer, fan out messages through a pub/sub broker such as Redis or Kafka, persist history in a partitioned store, apply per-connection buffers with backpressure and drop or slow consumers that fall behind, and track presence separately.",
		},
		{
			Text:        "Explain React concurrent features and how they impact large forms or dashboards.",
			IdealAnswer: "Concurrent rendering lets React interrupt low-priority work. startTransition and useDeferredValue keep typing responsive while expensive lists or charts update later, and Suspense coordinates loading states. Components must stay pure because renders can be discarded and replayed.",
		},
		{
			Text:        "Outline an indexing strategy for a MongoDB collection that supports text search and range filters.",
			IdealAnswer: "Create a text index for the searchable fields and compound indexes following equality, sort, range ordering for the filters. Verify plans with explain, keep indexes selective, and consider Atlas Search when text relevance and range filtering must be combined efficiently.",
		},
	},
}

var fallbackBank = Bank{
	DifficultyEasy: {
		{
			Text:        "What is the difference between let, const, and var in JavaScript?",
			IdealAnswer: "let and const are block-scoped while var is function-scoped. const cannot be reassigned after declaration.",
		},
		{
			Text:        "Explain the concept of React components and their lifecycle.",
			IdealAnswer: "React components are reusable pieces of UI. They have lifecycle methods like componentDidMount, componentDidUpdate, etc.",
		},
	},
	DifficultyMedium: {
		{
			Text:        "How would you implement user authentication in a React/Node.js application?",
			IdealAnswer: "Use JWT tokens, implement login/logout endpoints, store tokens securely, and protect routes on both frontend and backend.",
		},
		{
			Text:        "Explain the difference between SQL and NoSQL databases and when to use each.",
			IdealAnswer: "SQL databases are relational with structured schema, NoSQL are flexible. Use SQL for complex relationships, NoSQL for scalability.",
		},
	},
	DifficultyHard: {
		{
			Text:        "Design a scalable system for handling millions of user requests per day.",
			IdealAnswer: "Use load balancers, microservices, caching layers, database sharding, CDNs, and horizontal scaling strategies.",
		},
		{
			Text:        "Explain how you would optimize a slow-performing React application.",
			IdealAnswer: "Use React.memo, useMemo, useCallback, code splitting, lazy loading, optimize bundle size, and implement virtual scrolling.",
		},
	},
}
