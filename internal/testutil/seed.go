package testutil

// SeedSpec is the SPEC.md used by Seed: one graduated story, one row
// per requirement table, all references resolvable.
const SeedSpec = `# Feature Specification: Field Notes Sync

**Last Updated**: 2025-06-01

## User Scenarios & Testing

### User Story 1 - Fast lookups (Priority: P1)

**Revision**: v1.0

Users can look up any note by tag within one keystroke of typing.

**Acceptance Scenarios**:

1. **Given** a warm index, **When** the user types a tag prefix, **Then** matches appear within 50ms.
2. **Given** an empty notebook, **When** the user searches, **Then** an empty state is shown.

---

## Requirements

### Functional Requirements

| ID | Requirement | Stories | Confidence |
|----|-------------|---------|------------|
| FR-001 | System MUST index notes by tag | Story 1 | ✅ Confirmed |
| FR-002 | System MUST export notebooks while offline | Story 2 | 🔄 Draft |

## Edge Cases

| ID | Scenario | Handling | Stories Affected |
|----|----------|----------|------------------|
| EC-01 | Export interrupted mid-write | Resume from last complete chunk | Story 2 |

## Success Criteria

| ID | Criterion | Measurement | Stories |
|----|-----------|-------------|---------|
| SC-001 | Lookups feel instant | p95 latency under 50ms | Story 1 |
`

// SeedState is the STATE.md used by Seed: story 1 graduated, story 2
// in progress with working detail, story 3 queued.
const SeedState = `# Discovery State

## Story Status Overview

| # | Story | Priority | Status | Confidence |
|---|-------|----------|--------|------------|
| 1 | Fast lookups | P1 | ✅ In SPEC | 100% |
| 2 | Offline export | P2 | 🔄 In Progress | 100% |
| 3 | Shared notebooks | P3 | ⏳ Queued | 60% |

## In-Progress Story Detail

### Story 2: Offline export (Priority: P2)

Users can export a full notebook to a portable archive without a
network connection.

**Draft Acceptance Scenarios**:

1. **Given** a notebook with 100 notes **When** the user exports offline **Then** a complete archive is produced.
2. **Given** an export in progress **When** the device sleeps **Then** the export resumes on wake (pending Q1).

**Open Items**: Q1
`

// SeedQuestions is the OPEN_QUESTIONS.md used by Seed: one question
// per category, Q1 blocking story 2.
const SeedQuestions = `# Open Questions

## 🔴 Blocking

- **Q1**: How should interrupted exports resume?
  - *Context*: Sizing the export chunks depends on this
  - *Story*: Story 2
  - *Blocking*: Story 2 acceptance scenarios

## 🟡 Clarifying

- **Q2**: Should tag search be case-sensitive?
  - *Story*: Story 1

## 🔵 Research Pending

- **Q3**: What archive formats do competing tools emit?

## 🟠 Watching (May Affect Graduated)

- **Q4**: Could tag renames invalidate the index?
  - *Story*: Story 1
`

// SeedDecisions is the archive/DECISIONS.md used by Seed.
const SeedDecisions = `# Decision Log

## D1: Use append-only logs — 2025-06-01

**Context**: Needed a durable record of discovery decisions

**Question**: Q5

**Options Considered**:
Option 1: edit entries in place. Option 2: append-only with new entries superseding old.

**Decision**: Append-only; corrections are new entries

**Rationale**: History stays auditable

**Implications**:
Readers must scan for the latest entry on a topic

**Stories Affected**: Story 1

**Related Questions**: Q5
`

// SeedResearch is the archive/RESEARCH.md used by Seed.
const SeedResearch = `# Research Log

## R1: Portable archive formats — 2025-06-01

**Purpose**: Choose an export container

**Approach**: Surveyed export features of three competing tools

**Findings**:
All three emit zip with a manifest file

**Industry Patterns**:
Manifest-first archives dominate

**Relevant Examples**:
[Examples not provided]

**Implications**:
Zip plus manifest is the safe default

**Stories Informed**: Story 2

**Related Questions**: Q1
`
