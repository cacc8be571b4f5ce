// Package orbits integrates test-particle and light-ray motion around a
// point mass whose potential is softened at the sigma_P length scale
// r_eff = sqrt(r^2 + (sigma_P c)^2).
//
// Three systems are provided: a polar ParticleOrbit, a cartesian
// PhotonPath with the factor-2 light-bending acceleration, and a
// Precessing orbit carrying the first post-Newtonian correction.
package orbits
