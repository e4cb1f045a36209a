// Package docauth is the authorization and session core for an
// institutional document-management portal: credential verification,
// JWT session tokens, a role and workspace permission matrix, and the
// document lifecycle rules that depend on it.
//
// Sessions:
//   - Authenticator orchestrates registration, login, refresh, logout,
//     and profile resolution. Login collapses unknown email, wrong
//     password, and deactivated accounts into one error so accounts
//     cannot be enumerated, and burns a dummy hash comparison on misses
//     to keep timing uniform.
//   - TokenService issues paired access and refresh JWTs (HS256) with a
//     type discriminator claim. Revocation is the only stateful piece:
//     an in-memory RevocationList injected at construction, swept by a
//     background evictor.
//
// Authorization:
//   - PermissionResolver snapshots the role_permissions table into an
//     in-memory matrix. Every lookup miss denies; duplicate rows union.
//   - DocumentStateMachine gates draft/stored/archived moves: owners
//     may take any legal edge, non-owners need the edge's workspace
//     capability. Archival is only reachable through stored.
//
// Persistence:
//   - Users, Permissions, and Documents are bun repositories exposed
//     through RepositoryManager; BunUserStore adapts Users to the
//     narrow store the Authenticator depends on.
package docauth
